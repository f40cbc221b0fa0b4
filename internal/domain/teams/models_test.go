package teams

import "testing"

func TestGroupMembership(t *testing.T) {
	g := Group{Name: "A", Teams: []string{"Česko", "Francie", "Švýcarsko", "Kanada"}}

	if g.IndexOf("Švýcarsko") != 2 || g.IndexOf("USA") != -1 {
		t.Fatalf("unexpected IndexOf results")
	}
	if !g.Contains("Kanada") || g.Contains("USA") {
		t.Fatalf("unexpected Contains results")
	}
}
