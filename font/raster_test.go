package font

import "testing"

func TestLibraryRegistry(t *testing.T) {
	def := getLibrary(defaultLibraryName)
	if def == nil {
		t.Fatal("default backend not registered")
	}
	if def.Name() != "gotext" {
		t.Fatalf("default backend = %q, want gotext", def.Name())
	}
	// Unknown names fall back to the default backend.
	if lib := getLibrary("no-such-backend"); lib != def {
		t.Fatal("unknown backend did not fall back to the default")
	}

	fake := &fakeLibrary{}
	RegisterLibrary("fake-registry-test", fake)
	if got := getLibrary("fake-registry-test"); got != Library(fake) {
		t.Fatal("registered backend not returned")
	}

	h := NewHandle("Test", WithBackend("fake-registry-test"))
	if h.lib != Library(fake) {
		t.Fatal("WithBackend did not select the registered backend")
	}
}
