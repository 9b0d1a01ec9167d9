package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "950 m away", FormatDistance(950))
	assert.Equal(t, "1.2 km away", FormatDistance(1234))
	assert.Equal(t, "0 m away", FormatDistance(0.4))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "529841163774", DigitsOnly("+52 984 116 3774"))
	assert.Equal(t, "", DigitsOnly("no digits"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hola", Truncate("hola", 10))
	assert.Equal(t, "hol…", Truncate("hola mundo", 4))
	assert.Equal(t, "…", Truncate("hola", 1))
}
