package fs

import "testing"

func TestPathComponents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single component",
			input:    "foo",
			expected: []string{"foo"},
		},
		{
			name:     "multiple components",
			input:    "a/b/c",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "leading separator skipped",
			input:    "/a/b",
			expected: []string{"a", "b"},
		},
		{
			name:     "trailing separator skipped",
			input:    "a/b/",
			expected: []string{"a", "b"},
		},
		{
			name:     "doubled separators skipped",
			input:    "a//b",
			expected: []string{"a", "b"},
		},
		{
			name:     "dot components preserved",
			input:    "../sub/.",
			expected: []string{"..", "sub", "."},
		},
		{
			name:     "empty path",
			input:    "",
			expected: nil,
		},
		{
			name:     "separators only",
			input:    "///",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			components := NewPathComponents(tt.input)
			for {
				component, ok := components.Next()
				if !ok {
					break
				}
				got = append(got, component)
			}

			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Component %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}
