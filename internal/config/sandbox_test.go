package config

import (
	"testing"
)

func TestSandboxLuaVM(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"string library", `x = string.upper("hello")`, false},
		{"table library", `t = {1, 2}; table.insert(t, 3)`, false},
		{"math library", `x = math.max(1, 2)`, false},
		{"basic functions", `x = tostring(1) .. type({})`, false},
		{"os.execute", `os.execute("ls")`, true},
		{"os.getenv", `x = os.getenv("HOME")`, true},
		{"io.open", `io.open("/etc/passwd")`, true},
		{"require", `require("socket")`, true},
		{"dofile", `dofile("/tmp/x.lua")`, true},
		{"loadstring", `loadstring("x = 1")()`, true},
		{"debug", `debug.getinfo(1)`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newSandboxedVM()
			defer L.Close()

			err := L.DoString(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("DoString() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
