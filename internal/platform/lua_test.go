package platform

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func evalLua(t *testing.T, L *lua.LState, code string) lua.LValue {
	t.Helper()
	if err := L.DoString(code); err != nil {
		t.Fatalf("DoString(%q) error = %v", code, err)
	}
	v := L.Get(-1)
	L.Pop(1)
	return v
}

func TestInjectPlatformTable_Linux(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	InjectPlatformTable(L, &Info{
		OS:       "linux",
		Arch:     "amd64",
		Hostname: "web01",
		Platform: "ubuntu",
		Family:   FamilyDebian,
		Version:  "24.04",
	})

	tests := []struct {
		code string
		want lua.LValue
	}{
		{`return platform.os`, lua.LString("linux")},
		{`return platform.arch`, lua.LString("amd64")},
		{`return platform.hostname`, lua.LString("web01")},
		{`return platform.is_linux`, lua.LTrue},
		{`return platform.is_macos`, lua.LFalse},
		{`return platform.distro.id`, lua.LString("ubuntu")},
		{`return platform.distro.family`, lua.LString("debian")},
		{`return platform.distro.version`, lua.LString("24.04")},
		{`return platform.when(platform.is_linux, "yes")`, lua.LString("yes")},
		{`return platform.when(platform.is_macos, "yes")`, lua.LNil},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := evalLua(t, L, tt.code)
			if got.Type() != tt.want.Type() || got.String() != tt.want.String() {
				t.Errorf("got %v (%s), want %v (%s)", got, got.Type(), tt.want, tt.want.Type())
			}
		})
	}
}

func TestInjectPlatformTable_NoDistro(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	InjectPlatformTable(L, &Info{OS: "darwin", Arch: "arm64"})

	if got := evalLua(t, L, `return platform.distro`); got != lua.LNil {
		t.Errorf("platform.distro = %v, want nil", got)
	}
	if got := evalLua(t, L, `return platform.is_macos`); got != lua.LTrue {
		t.Errorf("platform.is_macos = %v, want true", got)
	}
}

func TestInjectPlatformTable_ReadOnly(t *testing.T) {
	writes := []string{
		`platform.os = "windows"`,
		`platform.new_key = 1`,
		`platform.distro.id = "arch"`,
		`setmetatable(platform, {})`,
	}

	for _, code := range writes {
		t.Run(code, func(t *testing.T) {
			L := lua.NewState()
			defer L.Close()
			InjectPlatformTable(L, &Info{OS: "linux", Arch: "amd64", Platform: "ubuntu", Family: FamilyDebian})

			err := L.DoString(code)
			if err == nil {
				t.Fatal("expected write to fail")
			}
			if !strings.Contains(err.Error(), "read-only") && !strings.Contains(err.Error(), "protected") {
				t.Errorf("unexpected error: %v", err)
			}
			if got := evalLua(t, L, `return platform.os`); got.String() != "linux" {
				t.Errorf("platform.os changed to %v", got)
			}
		})
	}
}
