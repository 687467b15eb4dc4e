package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatusToken(t *testing.T) {
	assert.Equal(t, "out_for_delivery", NormalizeStatusToken("out-for-delivery"))
	assert.Equal(t, "out_for_delivery", NormalizeStatusToken("  out_for_delivery "))
	assert.Equal(t, "on_the_way", NormalizeStatusToken("on-the-way"))
	assert.Equal(t, "pending", NormalizeStatusToken("pending"))
}

func TestParseStatusCanonical(t *testing.T) {
	for _, tok := range []string{
		"pending", "accepted", "assigned", "preparing", "picked",
		"on_the_way", "out_for_delivery", "delivering", "completed", "cancelled",
	} {
		s := ParseStatus(tok)
		assert.NotEqual(t, StatusUnrecognized, s, "token %q should parse", tok)
		assert.Equal(t, tok, s.String())
	}
}

func TestParseStatusHyphenForms(t *testing.T) {
	assert.Equal(t, StatusOutForDelivery, ParseStatus("out-for-delivery"))
	assert.Equal(t, StatusOnTheWay, ParseStatus("on-the-way"))
}

func TestParseStatusUnrecognized(t *testing.T) {
	assert.Equal(t, StatusUnrecognized, ParseStatus("shipped"))
	assert.Equal(t, StatusUnrecognized, ParseStatus(""))
	assert.Equal(t, StatusUnrecognized, ParseStatus("PENDING"))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusOutForDelivery.IsTerminal())
}

func TestOrderIsAssignedTo(t *testing.T) {
	var o Order
	assert.False(t, o.IsAssignedTo(7))

	id := uint(7)
	o.AssignedToID = &id
	assert.True(t, o.IsAssignedTo(7))
	assert.False(t, o.IsAssignedTo(8))
}
