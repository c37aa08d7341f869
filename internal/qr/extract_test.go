package qr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

func TestExtractBoletaFromURL(t *testing.T) {
	boleta, err := ExtractBoleta("https://coatl.cecyt9.ipn.mx/app/qr_system/accessprocess.php?boleta=2024090001")
	require.NoError(t, err)
	assert.Equal(t, "2024090001", boleta)
}

func TestExtractBoletaPrefersQueryParam(t *testing.T) {
	// The parameter wins even when other digit runs appear in the URL.
	boleta, err := ExtractBoleta("https://host/path/1111111111?boleta=2024090002")
	require.NoError(t, err)
	assert.Equal(t, "2024090002", boleta)
}

func TestExtractBoletaFallsBackToDigitRun(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"bare boleta", "2024090001", "2024090001"},
		{"embedded in text", "alumno:2024090003 turno matutino", "2024090003"},
		{"url without param", "https://host/path?id=abc 2019090044", "2019090044"},
		{"first of two runs", "1111111111 y 2222222222", "1111111111"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boleta, err := ExtractBoleta(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, boleta)
		})
	}
}

func TestExtractBoletaInvalidPayload(t *testing.T) {
	for _, payload := range []string{"", "no digits here", "123456789", "?boleta="} {
		_, err := ExtractBoleta(payload)
		require.Error(t, err, payload)
		var appErr *appErrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrInvalidPayload.Code, appErr.Code)
	}
}
