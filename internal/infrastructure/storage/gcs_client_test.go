package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	name := ObjectName("/uploads/", ".png", at)

	assert.True(t, strings.HasPrefix(name, "uploads/20260304050607-"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)
	assert.NotEqual(t, name, ObjectName("uploads", ".png", at))
}
