package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNum(t *testing.T) {
	assert.Equal(t, "0", num(0))
	assert.Equal(t, "512", num(512))
	assert.Equal(t, "1,536", num(1536))
	assert.Equal(t, "1,000,000", num(uint64(1_000_000)))
}

func TestBytesize(t *testing.T) {
	assert.Equal(t, "512 B", bytesize(512))
	assert.Equal(t, "12.0 KiB", bytesize(12288))
	assert.Equal(t, "1.5 MiB", bytesize(3<<19))
	assert.Equal(t, "2.0 GiB", bytesize(2<<30))
}

func TestRate(t *testing.T) {
	assert.Equal(t, "n/a", rate(10, 0))
	assert.Equal(t, "2,000 ops/s", rate(1000, 500*time.Millisecond))
}
