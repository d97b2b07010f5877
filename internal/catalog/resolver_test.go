package catalog

import (
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Declaraciones", "declaraciones"},
		{"  Declaración   IVA  ", "declaracion iva"},
		{"NÓMINAS", "nominas"},
		{"gestión\tcontable", "gestion contable"},
		{"año", "ano"},
		{"Français", "francais"},
		{"0-5000", "0-5000"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := normalizeName(tc.in); got != tc.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveService(t *testing.T) {
	fake := newFakeAuthority()
	cat, svc, _, _ := seedGestoria(fake)
	other := fake.seedCategory("Particulares")
	env := newTestEnv(t, fake)
	r := NewNameResolver(env.store)

	t.Run("match in scope", func(t *testing.T) {
		res := r.ResolveService("DECLARACIONES", cat.ID)
		if res.NeedsCreate {
			t.Fatal("expected a match")
		}
		if res.ExistingID != svc.ID {
			t.Errorf("expected %s, got %s", svc.ID, res.ExistingID)
		}
		if res.Name != "Declaraciones" {
			t.Errorf("expected canonical name, got %q", res.Name)
		}
	})

	t.Run("no match creates", func(t *testing.T) {
		res := r.ResolveService("Contabilidad", cat.ID)
		if !res.NeedsCreate {
			t.Fatal("expected NeedsCreate")
		}
		if res.Name != "Contabilidad" {
			t.Errorf("expected trimmed input name, got %q", res.Name)
		}
		if res.Warning != "" {
			t.Errorf("unexpected warning %q", res.Warning)
		}
	})

	t.Run("cross-category match warns", func(t *testing.T) {
		res := r.ResolveService("declaraciones", other.ID)
		if !res.NeedsCreate {
			t.Fatal("a match in another category must not resolve")
		}
		if res.Warning == "" {
			t.Error("expected a cross-category warning")
		}
	})
}

func TestResolveSubcategoryIsGlobal(t *testing.T) {
	fake := newFakeAuthority()
	_, _, tier, _ := seedGestoria(fake)
	env := newTestEnv(t, fake)
	r := NewNameResolver(env.store)

	res := r.ResolveSubcategory(" 0-5000 ")
	if res.NeedsCreate {
		t.Fatal("expected a global match")
	}
	if res.ExistingID != tier.ID {
		t.Errorf("expected %s, got %s", tier.ID, res.ExistingID)
	}

	res = r.ResolveSubcategory("50001+")
	if !res.NeedsCreate {
		t.Fatal("expected NeedsCreate for an unseen tier")
	}
}
