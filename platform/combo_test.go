package platform

import "testing"

func TestParseCombo(t *testing.T) {
	tests := []struct {
		name    string
		chord   string
		want    Combo
		wantErr bool
	}{
		{
			name:  "standard chord",
			chord: "ctrl+alt+s",
			want:  Combo{Ctrl: true, Alt: true, Key: 0x53, KeyName: "s"},
		},
		{
			name:  "modifier only",
			chord: "ctrl+win",
			want:  Combo{Ctrl: true, Win: true},
		},
		{
			name:  "case and whitespace normalized",
			chord: " Ctrl + Shift + V ",
			want:  Combo{Ctrl: true, Shift: true, Key: 0x56, KeyName: "v"},
		},
		{
			name:  "function key",
			chord: "alt+f4",
			want:  Combo{Alt: true, Key: 0x73, KeyName: "f4"},
		},
		{
			name:  "control alias",
			chord: "control+n",
			want:  Combo{Ctrl: true, Key: 0x4E, KeyName: "n"},
		},
		{
			name:    "garbage chord",
			chord:   "bad!!chord",
			wantErr: true,
		},
		{
			name:    "unknown modifier in middle",
			chord:   "ctrl+meta+s",
			wantErr: true,
		},
		{
			name:    "unknown key",
			chord:   "ctrl+alt+unknownkey",
			wantErr: true,
		},
		{
			name:    "no modifiers",
			chord:   "s",
			wantErr: true,
		},
		{
			name:    "empty",
			chord:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCombo(tt.chord)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCombo(%q) = %+v, want error", tt.chord, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCombo(%q) returned error: %v", tt.chord, err)
			}
			if got != tt.want {
				t.Errorf("ParseCombo(%q) = %+v, want %+v", tt.chord, got, tt.want)
			}
		})
	}
}

func TestComboString(t *testing.T) {
	tests := []struct {
		combo Combo
		want  string
	}{
		{Combo{Ctrl: true, Alt: true, Key: 0x53, KeyName: "s"}, "ctrl+alt+s"},
		{Combo{Ctrl: true, Shift: true, Win: true}, "ctrl+shift+win"},
		{Combo{Alt: true, Key: 0x73, KeyName: "f4"}, "alt+f4"},
	}

	for _, tt := range tests {
		if got := tt.combo.String(); got != tt.want {
			t.Errorf("Combo.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseComboRoundTrip(t *testing.T) {
	for _, chord := range []string{"ctrl+alt+s", "ctrl+shift+v", "ctrl+win", "alt+space"} {
		combo, err := ParseCombo(chord)
		if err != nil {
			t.Fatalf("ParseCombo(%q) returned error: %v", chord, err)
		}
		if combo.String() != chord {
			t.Errorf("round trip of %q = %q", chord, combo.String())
		}
	}
}
