package utils

import (
	"reflect"
	"testing"

	"github.com/beevik/etree"
)

func parse(t *testing.T, s string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		t.Fatalf("failed to parse test document: %v", err)
	}
	return doc.Root()
}

func TestText(t *testing.T) {
	e := parse(t, `<entry><name> eth0 </name><empty/></entry>`)
	tests := []struct {
		tag  string
		want string
	}{
		{"name", "eth0"},
		{"empty", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := Text(e, tt.tag); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
	if got := Text(nil, "name"); got != "" {
		t.Errorf("Text(nil) = %q, want empty", got)
	}
}

func TestInt(t *testing.T) {
	e := parse(t, `<entry><metric>10</metric><age/><flags>A S</flags></entry>`)
	tests := []struct {
		tag      string
		fallback int
		want     int
	}{
		{"metric", -1, 10},
		{"age", -1, -1},
		{"flags", -1, -1},
		{"missing", 7, 7},
	}
	for _, tt := range tests {
		if got := Int(e, tt.tag, tt.fallback); got != tt.want {
			t.Errorf("Int(%q, %d) = %d, want %d", tt.tag, tt.fallback, got, tt.want)
		}
	}
}

func TestMembers(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		tag  string
		want []string
	}{
		{
			name: "many members",
			doc:  `<entry><addr6><member>fe80::1/64</member><member>2001::1/120</member></addr6></entry>`,
			tag:  "addr6",
			want: []string{"fe80::1/64", "2001::1/120"},
		},
		{
			name: "single member",
			doc:  `<entry><addr><member>1.1.1.1/28</member></addr></entry>`,
			tag:  "addr",
			want: []string{"1.1.1.1/28"},
		},
		{
			name: "bare text normalizes to one entry",
			doc:  `<entry><addr>1.1.1.1/28</addr></entry>`,
			tag:  "addr",
			want: []string{"1.1.1.1/28"},
		},
		{
			name: "absent container",
			doc:  `<entry/>`,
			tag:  "addr",
			want: nil,
		},
		{
			name: "empty container",
			doc:  `<entry><addr/></entry>`,
			tag:  "addr",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Members(parse(t, tt.doc), tt.tag)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Members() = %v, want %v", got, tt.want)
			}
		})
	}
}
