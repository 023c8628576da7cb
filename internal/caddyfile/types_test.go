package caddyfile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDirective_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b *Directive
		want bool
	}{
		{"nil and empty args", &Directive{Name: "file_server"}, &Directive{Name: "file_server", Args: []string{}}, true},
		{"different names", NewDirective("root"), NewDirective("file_server"), false},
		{"argument order matters", NewDirective("encode", "gzip", "zstd"), NewDirective("encode", "zstd", "gzip"), false},
		{"nil directives", nil, nil, true},
		{"nil and non-nil", nil, NewDirective("root"), false},
		{
			"nesting matters",
			&Directive{Name: "handle", Subdirectives: []*Directive{NewDirective("file_server")}},
			NewDirective("handle"),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirective_CloneIsDeep(t *testing.T) {
	orig := NewDirective("handle", "/a")
	orig.AddSubdirective(NewDirective("reverse_proxy", ":1"))

	clone := orig.Clone()
	clone.Args[0] = "/b"
	clone.Subdirectives[0].Args[0] = ":2"
	clone.AddSubdirective(NewDirective("file_server"))

	if orig.Args[0] != "/a" || orig.Subdirectives[0].Args[0] != ":1" || len(orig.Subdirectives) != 1 {
		t.Errorf("original modified through clone: %v", orig)
	}
}

func TestSiteBlock_Equal(t *testing.T) {
	a := NewSite("a.com", "")
	b := &SiteBlock{Domain: "a.com"}
	if !a.Equal(b) {
		t.Error("empty scheme should equal http")
	}

	b.Scheme = SchemeHTTPS
	if a.Equal(b) {
		t.Error("http and https sites should differ")
	}
}

func TestDocument_SetSite(t *testing.T) {
	doc := NewDocument()
	doc.SetSite(NewSite("a.com", ""))
	doc.SetSite(NewSite("b.com", ""))

	replacement := NewSite("a.com", "unix//tmp/a.sock")
	doc.SetSite(replacement)

	if doc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", doc.Len())
	}
	if doc.Site("a.com") != replacement {
		t.Error("SetSite did not overwrite existing domain")
	}
	if diff := cmp.Diff([]string{"a.com", "b.com"}, doc.Domains()); diff != "" {
		t.Errorf("overwrite changed position (-want +got):\n%s", diff)
	}
	for _, site := range doc.Sites() {
		if doc.Site(site.Domain) != site {
			t.Errorf("site keyed under wrong domain: %s", site.Domain)
		}
	}
}

func TestDocument_ZeroValueUsable(t *testing.T) {
	var doc Document
	doc.SetSite(NewSite("a.com", ""))
	if !doc.HasSite("a.com") {
		t.Error("zero Document should accept sites")
	}
}

func TestDocument_CloneAndEqual(t *testing.T) {
	doc := NewDocument()
	doc.GlobalOptions = "off"
	site := NewSite("a.com", "")
	site.AddDirective(NewDirective("file_server"))
	doc.SetSite(site)

	clone := doc.Clone()
	if !clone.Equal(doc) {
		t.Fatal("clone should equal original")
	}

	clone.Site("a.com").AddDirective(NewDirective("encode", "gzip"))
	if clone.Equal(doc) {
		t.Error("mutating the clone should not affect the original")
	}
	if len(doc.Site("a.com").Directives) != 1 {
		t.Error("original site was modified")
	}

	other := NewDocument()
	other.SetSite(NewSite("b.com", ""))
	other.SetSite(NewSite("a.com", ""))
	reordered := NewDocument()
	reordered.SetSite(NewSite("a.com", ""))
	reordered.SetSite(NewSite("b.com", ""))
	if !other.Equal(reordered) {
		t.Error("Equal should ignore site order")
	}
}

func TestDocument_EqualNil(t *testing.T) {
	var missing *Document
	if NewDocument().Equal(nil) {
		t.Error("document should not equal nil")
	}
	if missing.Equal(NewDocument()) {
		t.Error("nil should not equal a document")
	}
	if !missing.Equal(nil) {
		t.Error("nil should equal nil")
	}
}
