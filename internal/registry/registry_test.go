package registry

import (
	"sync"
	"testing"

	"github.com/quantumtrack/quantumtrack/internal/config"
)

func users(names ...string) []config.User {
	out := make([]config.User, 0, len(names))
	for _, n := range names {
		out = append(out, config.User{Name: n, APIKeyEnv: "KEY_" + n, Instance: "crn:" + n})
	}
	return out
}

func TestLookup_CaseInsensitive(t *testing.T) {
	r := New(users("Varsha", "Hema"))

	for _, name := range []string{"varsha", "VARSHA", "Varsha", "vArShA"} {
		u, ok := r.Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q): expected hit", name)
		}
		if u.Name != "Varsha" {
			t.Errorf("Lookup(%q).Name: got %q, want Varsha", name, u.Name)
		}
	}
}

func TestLookup_Missing(t *testing.T) {
	r := New(users("Varsha"))
	if _, ok := r.Lookup("nobody"); ok {
		t.Fatal("Lookup on unknown name: expected miss")
	}
}

func TestNames_Sorted(t *testing.T) {
	r := New(users("Valli", "Hema", "Maggi"))
	got := r.Names()
	want := []string{"Hema", "Maggi", "Valli"}
	if len(got) != len(want) {
		t.Fatalf("Names: got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFirst_SortedOrder(t *testing.T) {
	r := New(users("Valli", "Hema"))
	u, ok := r.First()
	if !ok {
		t.Fatal("First: expected a user")
	}
	if u.Name != "Hema" {
		t.Errorf("First: got %q, want Hema", u.Name)
	}
}

func TestFirst_Empty(t *testing.T) {
	r := New(nil)
	if _, ok := r.First(); ok {
		t.Fatal("First on empty registry: expected false")
	}
}

func TestReplace_SwapsDirectory(t *testing.T) {
	r := New(users("Varsha"))
	r.Replace(users("Sania", "Gheya"))

	if _, ok := r.Lookup("varsha"); ok {
		t.Error("Lookup(varsha) after Replace: expected miss")
	}
	if _, ok := r.Lookup("sania"); !ok {
		t.Error("Lookup(sania) after Replace: expected hit")
	}
	if n := r.Count(); n != 2 {
		t.Errorf("Count after Replace: got %d, want 2", n)
	}
}

func TestConcurrentLookupAndReplace(t *testing.T) {
	r := New(users("Varsha"))
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Lookup("varsha")
			r.All()
		}()
		go func() {
			defer wg.Done()
			r.Replace(users("Varsha", "Hema"))
		}()
	}
	wg.Wait()
}
