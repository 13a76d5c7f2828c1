package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParameterize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"San Francisco, CA", "san-francisco-ca"},
		{"New York", "new-york"},
		{"  Zürich  ", "zurich"},
		{"São Paulo", "sao-paulo"},
		{"Saint-Étienne -- France!!", "saint-etienne-france"},
		{"10001", "10001"},
		{"Москва", "москва"},
		{"Санкт-Петербург, Россия", "санкт-петербург-россия"},
		{"東京都", "東京都"},
		{"☀️ ☁️", ""},
		{"", ""},
		{"***", ""},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Parameterize(tc.in))
		})
	}
}

func TestParameterizeIsStable(t *testing.T) {
	first := Parameterize("Montréal, QC")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Parameterize("Montréal, QC"))
	}
	assert.Equal(t, "montreal-qc", first)
}
