package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionConstants(t *testing.T) {
	assert.Equal(t, "CREATE", ActionCreate)
	assert.Equal(t, "UPDATE", ActionUpdate)
	assert.Equal(t, "DELETE", ActionDelete)
}
