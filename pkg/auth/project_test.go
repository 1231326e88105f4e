package auth

import (
	"errors"
	"testing"
)

const testProjectID = "11111111-1111-1111-1111-111111111111"

func TestResolveProjectID_PathParamPreferred(t *testing.T) {
	// The router-bound value wins even when the literal path disagrees.
	got, err := ResolveProjectID(testProjectID, "/mcp/22222222-2222-2222-2222-222222222222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != testProjectID {
		t.Errorf("project ID = %q, want %q", got, testProjectID)
	}
}

func TestResolveProjectID_PathParamNotUUID(t *testing.T) {
	_, err := ResolveProjectID("not-a-uuid", "/mcp/"+testProjectID)
	if !errors.Is(err, ErrMalformedProjectID) {
		t.Fatalf("err = %v, want ErrMalformedProjectID", err)
	}
}

func TestResolveProjectID_URLFallback(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"plain project route", "/mcp/" + testProjectID, testProjectID, false},
		{"trailing subpath", "/mcp/" + testProjectID + "/tools/list", testProjectID, false},
		{"uppercase UUID is normalized", "/mcp/AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE", "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", false},
		{"missing mcp segment", "/api/" + testProjectID, "", true},
		{"root path", "/", "", true},
		{"mcp without project", "/mcp", "", true},
		{"non-UUID project segment", "/mcp/project-one", "", true},
		{"empty path", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveProjectID("", tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedProjectID) {
					t.Fatalf("err = %v, want ErrMalformedProjectID", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("project ID = %q, want %q", got, tt.want)
			}
		})
	}
}
