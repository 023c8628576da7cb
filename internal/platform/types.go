// Package platform detects the host nest runs on and exposes it to the
// nest.lua settings file as a read-only "platform" table.
//
// Detection uses runtime for OS and architecture and gopsutil for the
// hostname and Linux distribution. Distribution lookup failures are not
// fatal: the table simply has no distro entry.
package platform

import "context"

// Linux distribution families.
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// Info describes the host.
type Info struct {
	OS       string // runtime.GOOS
	Arch     string // normalized: amd64, arm64, or GOARCH as-is
	Hostname string
	Platform string // distro id on Linux, e.g. "ubuntu"
	Family   string // canonical distro family on Linux
	Version  string // distro version on Linux
}

// IsLinux reports a Linux host.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS reports a macOS host.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// HasDistro reports whether Linux distribution details were detected.
func (i *Info) HasDistro() bool {
	return i.IsLinux() && i.Platform != ""
}

// Detector detects the current platform.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// Static is a Detector that always returns the same Info. Useful in tests
// and when detection should be skipped.
type Static struct {
	Info *Info
}

// Detect returns the fixed Info.
func (s Static) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Info, nil
}
