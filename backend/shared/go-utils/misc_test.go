package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtrVal(t *testing.T) {
	p := Ptr(42)
	assert.Equal(t, 42, Val(p))

	var nilPtr *string
	assert.Equal(t, "", Val(nilPtr))
}

func TestRedactDBURL(t *testing.T) {
	got := RedactDBURL("postgres://app:s3cret@db:5432/stayspot?sslmode=disable")
	assert.NotContains(t, got, "s3cret")
	assert.Contains(t, got, "app:xxxxx@db:5432")

	assert.Equal(t, "postgres://db/stayspot", RedactDBURL("postgres://db/stayspot"))
}
