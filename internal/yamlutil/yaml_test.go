package yamlutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-letterpdf/internal/yamlutil"
)

type testRecord struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled bool   `yaml:"enabled"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Strict decoding of in-memory YAML
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    testRecord
		wantErr error
		anyErr  bool
	}{
		{
			name:  "valid input",
			input: "name: letters\ncount: 3\nenabled: true",
			want:  testRecord{Name: "letters", Count: 3, Enabled: true},
		},
		{
			name:  "partial input keeps zero values",
			input: "name: letters",
			want:  testRecord{Name: "letters"},
		},
		{
			name:   "unknown field",
			input:  "name: letters\nunknown: x",
			anyErr: true,
		},
		{
			name:   "type mismatch",
			input:  "count: many",
			anyErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: yamlutil.ErrNilData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got testRecord
			err := yamlutil.UnmarshalStrict([]byte(tt.input), &got)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("expected error, got nil")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}

func TestUnmarshalStrict_NilDestination(t *testing.T) {
	t.Parallel()

	if err := yamlutil.UnmarshalStrict([]byte("name: x"), nil); !errors.Is(err, yamlutil.ErrNilDestination) {
		t.Errorf("error = %v, want ErrNilDestination", err)
	}
}

// ---------------------------------------------------------------------------
// TestReadFileStrict - File decoding with a size limit
// ---------------------------------------------------------------------------

func TestReadFileStrict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("decodes file", func(t *testing.T) {
		t.Parallel()

		var got testRecord
		if err := yamlutil.ReadFileStrict(write("ok.yaml", "name: x\ncount: 2"), &got, 1024); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "x" || got.Count != 2 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("rejects file over limit", func(t *testing.T) {
		t.Parallel()

		path := write("big.yaml", "name: "+strings.Repeat("x", 200))
		var got testRecord
		err := yamlutil.ReadFileStrict(path, &got, 100)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
	})

	t.Run("missing file wraps os.ErrNotExist", func(t *testing.T) {
		t.Parallel()

		var got testRecord
		err := yamlutil.ReadFileStrict(filepath.Join(dir, "nope.yaml"), &got, 100)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})
}

// Note: modifies the global MaxInputSize, so it does not run in parallel.
func TestInputSizeLimit(t *testing.T) {
	originalMax := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = originalMax })

	yamlutil.MaxInputSize = 50
	data := make([]byte, 100)
	copy(data, "name: x")

	var got testRecord
	err := yamlutil.UnmarshalStrict(data, &got)
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Fatalf("error = %v, want ErrInputTooLarge", err)
	}
	if !strings.Contains(err.Error(), "100 bytes") || !strings.Contains(err.Error(), "max 50") {
		t.Errorf("error should include sizes, got: %s", err)
	}
}
