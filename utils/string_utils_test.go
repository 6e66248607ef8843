package utils

import "testing"

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"name", "name"},
		{"firstName", "first_name"},
		{"orderItemCount", "order_item_count"},
		{"ID", "i_d"},
		{"placedAt", "placed_at"},
	}

	for _, tt := range tests {
		if got := ToSnakeCase(tt.input); got != tt.expected {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"customer", "customers"},
		{"box", "boxes"},
		{"city", "cities"},
		{"day", "days"},
		{"shelf", "shelves"},
		{"knife", "knives"},
		{"order", "orders"},
	}

	for _, tt := range tests {
		if got := Pluralize(tt.input); got != tt.expected {
			t.Errorf("Pluralize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
