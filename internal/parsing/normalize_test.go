package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"golang", "Go"},
		{"GOLANG", "Go"},
		{"go  lang", "Go"},
		{"JS", "JavaScript"},
		{"k8s", "Kubernetes"},
		{"react.js", "React"},
		{"nodejs", "Node.js"},
		{"aws", "AWS"},
		{"MS Excel", "Excel"},
		{"quickbooks", "QuickBooks"},
		{"customer support", "Customer Service"},
		{"python", "Python"},
		{"PYTHON", "Python"},
		{"Kubernetes", "Kubernetes"},
		{"JavaScript", "JavaScript"},
		{" Distributed   Systems ", "Distributed Systems"},
		{"bookkeeping basics", "bookkeeping basics"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSkillName(tt.in))
		})
	}
}

func TestNormalizeSkills(t *testing.T) {
	in := []string{"golang", "Go", " sql ", "", "ms excel", "Customer Service", "customer support", "SQL", "k8s"}

	assert.Equal(t, []string{"Go", "SQL", "Excel", "Customer Service", "Kubernetes"}, NormalizeSkills(in))
	assert.Empty(t, NormalizeSkills(nil))
	assert.NotNil(t, NormalizeSkills(nil))
}
