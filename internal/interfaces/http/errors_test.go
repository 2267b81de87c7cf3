package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	"github.com/jhoicas/retail-ledger/internal/domain"
)

func TestWriteError_Mapeo(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", domain.Invalid("reason", "inválido"), http.StatusBadRequest, "VALIDATION"},
		{"no encontrado", domain.NotFound("producto", "p1"), http.StatusNotFound, "NOT_FOUND"},
		{"conflicto", domain.Conflict("la caja ya fue cerrada"), http.StatusConflict, "CONFLICT"},
		{"almacenamiento", domain.Storage("commit", errors.New("pq: password=secreta")), http.StatusInternalServerError, "INTERNAL"},
		{"desconocido", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, zerolog.Nop(), tc.err) })
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
			if tc.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Message, "secreta")
				assert.NotContains(t, body.Message, "boom")
			}
		})
	}
}
