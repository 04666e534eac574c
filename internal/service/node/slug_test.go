package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ops-journal/internal/service/node"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Payments Team", "payments-team"},
		{"  API / Gateway  ", "api-gateway"},
		{"prod (eu-west-1)", "prod-eu-west-1"},
		{"Ops!!!", "ops"},
		{"---", "node"},
		{"", "node"},
		{"Ünïcode Name", "n-code-name"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, node.Slugify(tc.in), "input %q", tc.in)
	}
}

func TestBuildPath(t *testing.T) {
	assert.Equal(t, "/platform", node.BuildPath("", "platform"))
	assert.Equal(t, "/platform/payments", node.BuildPath("/platform", "payments"))
}
