package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPassword(t *testing.T) {
	u := User{}
	require.NoError(t, u.SetPassword("secret123"))

	assert.NotEqual(t, "secret123", u.Password, "password must never be stored in plain text")
	assert.True(t, u.ComparePassword("secret123"))
	assert.False(t, u.ComparePassword("secret124"))
	assert.False(t, u.ComparePassword(""))
}

func TestUserEmailNormalization(t *testing.T) {
	u := User{Email: "  Alice@Example.COM "}
	require.NoError(t, u.BeforeSave(nil))
	assert.Equal(t, "alice@example.com", u.Email)
}
