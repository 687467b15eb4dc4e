package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(Validation("bad")))
	assert.Equal(t, http.StatusNotFound, StatusOf(NotFound("missing")))
	assert.Equal(t, http.StatusForbidden, StatusOf(Forbidden("no")))
	assert.Equal(t, http.StatusConflict, StatusOf(Conflict("busy")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(Server("boom")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}

func TestStatusOfWrapped(t *testing.T) {
	err := fmt.Errorf("cancel order: %w", Conflict("Order cannot be cancelled at this stage"))
	assert.Equal(t, http.StatusConflict, StatusOf(err))
	assert.Equal(t, "cancel order: Order cannot be cancelled at this stage", err.Error())
}
