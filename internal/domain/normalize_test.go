package domain

import "testing"

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase", input: "ARROZ T PELON 99", want: "arroz t pelon 99"},
		{name: "percent sign dropped", input: "Arroz Tio Pelon 99%", want: "arroz tio pelon 99"},
		{name: "diacritics stripped", input: "Café Tío Piña", want: "cafe tio pina"},
		{name: "punctuation becomes space", input: "LECHE.DOS-PINOS/1L", want: "leche dos pinos 1l"},
		{name: "underscore becomes space", input: "jugo_naranja", want: "jugo naranja"},
		{name: "compress spaces", input: "atun   tesoro  del mar", want: "atun tesoro del mar"},
		{name: "trim", input: "  \t pan bimbo \n", want: "pan bimbo"},
		{name: "symbols only", input: "%%% ***", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "leading symbol", input: "*OFERTA* arroz", want: "oferta arroz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
