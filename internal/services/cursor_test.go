package services

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capital-tracker/internal/apperr"
)

func TestCursorRoundtrip(t *testing.T) {
	date := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	id := "3f1b2c9a-0d4e-4b7f-8a65-1c2d3e4f5a6b"

	token := EncodeCursor(date, id)
	cursor, err := DecodeCursor(token)

	require.NoError(t, err)
	assert.Equal(t, id, cursor.ID)
	assert.True(t, cursor.Date.Equal(date))
}

func TestCursorRoundtripMillisecondPrecision(t *testing.T) {
	date := time.Date(2024, 6, 30, 23, 59, 59, 123_000_000, time.UTC)

	cursor, err := DecodeCursor(EncodeCursor(date, "abc"))

	require.NoError(t, err)
	assert.True(t, cursor.Date.Equal(date))
}

func TestDecodeCursorMalformed(t *testing.T) {
	cases := map[string]string{
		"not base64":      "!!!not-base64url!!!",
		"not json":        base64.RawURLEncoding.EncodeToString([]byte("hello")),
		"missing id":      base64.RawURLEncoding.EncodeToString([]byte(`{"d":1700000000000}`)),
		"missing date":    base64.RawURLEncoding.EncodeToString([]byte(`{"id":"abc"}`)),
		"wrong date type": base64.RawURLEncoding.EncodeToString([]byte(`{"d":"yesterday","id":"abc"}`)),
		"wrong id type":   base64.RawURLEncoding.EncodeToString([]byte(`{"d":1700000000000,"id":42}`)),
		"empty token":     "",
		"json null":       base64.RawURLEncoding.EncodeToString([]byte(`null`)),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			cursor, err := DecodeCursor(token)

			assert.Nil(t, cursor)
			var domainErr *apperr.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "BAD_CURSOR", domainErr.Code)
			assert.Equal(t, 400, domainErr.Status)
		})
	}
}

func TestDecodeCursorTampered(t *testing.T) {
	token := EncodeCursor(time.Now(), "some-id")
	tampered := token[:len(token)-2] + "=="

	_, err := DecodeCursor(tampered)

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "BAD_CURSOR", domainErr.Code)
}
