package letterpdf

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseContactIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []int64
		wantErr bool
	}{
		{"single id", "42", []int64{42}, false},
		{"list", "1,2,3", []int64{1, 2, 3}, false},
		{"spaces around commas", " 1 , 2,3 ", []int64{1, 2, 3}, false},
		{"duplicates keep first-seen order", "3,1,3,2,1", []int64{3, 1, 2}, false},
		{"empty", "", nil, true},
		{"trailing comma", "1,2,", nil, true},
		{"leading comma", ",1", nil, true},
		{"negative", "-1", nil, true},
		{"semicolon", "1;2", nil, true},
		{"letters", "1,a", nil, true},
		{"space inside number", "1 2", nil, true},
		{"overflow", "99999999999999999999", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseContactIDs(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidContactIDs) {
					t.Errorf("ParseContactIDs(%q) error = %v, want ErrInvalidContactIDs", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseContactIDs(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseContactIDs(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseOutputMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    OutputMode
		wantErr bool
	}{
		{"", OutputEmail, false},
		{"email", OutputEmail, false},
		{"PDF", OutputPDF, false},
		{" html ", OutputHTML, false},
		{"fax", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOutputMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOutput) {
					t.Errorf("ParseOutputMode(%q) error = %v, want ErrInvalidOutput", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseOutputMode(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
			}
		})
	}
}
