package urlcipher

import (
	"errors"
	"testing"
)

const testProxyBase = "https://vpn.example.edu.cn"

func TestToProxyURL(t *testing.T) {
	for _, tt := range []struct {
		name string
		in   string
		want string
	}{
		{
			name: "http default port",
			in:   "http://a.b.c/path?x=1",
			want: testProxyBase + "/http/77726476706e69737468656265737421f1b943d224/path?x=1",
		},
		{
			name: "https no path",
			in:   "https://a.b.c",
			want: testProxyBase + "/https/77726476706e69737468656265737421f1b943d224",
		},
		{
			name: "explicit port",
			in:   "http://a.b.c:8080/x",
			want: testProxyBase + "/http-8080/77726476706e69737468656265737421f1b943d224/x",
		},
		{
			name: "query preserved",
			in:   "https://jwxt.example.edu.cn/jsxsd/?a=1&b=2",
			want: testProxyBase + "/https/77726476706e69737468656265737421fae0598869357051731885a9d6502720493c2c/jsxsd/?a=1&b=2",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToProxyURL(tt.in, testProxyBase)
			if err != nil {
				t.Fatalf("ToProxyURL(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ToProxyURL(%q)\n got %q\nwant %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToProxyURLRejectsOtherSchemes(t *testing.T) {
	for _, in := range []string{"ftp://a.b.c/x", "ws://a.b.c/sock", "file:///etc/hosts"} {
		if _, err := ToProxyURL(in, testProxyBase); !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("ToProxyURL(%q) err = %v, want ErrUnsupportedScheme", in, err)
		}
	}
}

func TestIsProxied(t *testing.T) {
	proxied, err := ToProxyURL("https://a.b.c/x", testProxyBase)
	if err != nil {
		t.Fatal(err)
	}
	if !IsProxied(proxied, testProxyBase) {
		t.Errorf("IsProxied(%q) = false", proxied)
	}
	if IsProxied("https://a.b.c/x", testProxyBase) {
		t.Error("a direct url must not count as proxied")
	}
}
