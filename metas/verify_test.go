package metas

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestVerifier(t *testing.T) {
	v := NewVerifier()

	assert.NoError(t, v.Verify("INSERT INTO `users` (`id`,`email`) VALUES (1,'a\\'b@example.com');"))
	assert.NoError(t, v.Verify("INSERT INTO `users` VALUES (1,NULL,0x1F);"))

	err := v.Verify("INSERT INTO `users` (`id`,`email`) VALUES (1);")
	assert.True(t, errors.IsNotValid(err))

	assert.Error(t, v.Verify("INSERT INTO `users` VALUES (1,"))
}
