package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/beastmind/internal/model"
)

func TestLegalTransitions(t *testing.T) {
	tests := []struct {
		from, to model.AttackPhase
		want     bool
	}{
		{model.AttackIdle, model.AttackWindup, true},
		{model.AttackWindup, model.AttackActive, true},
		{model.AttackActive, model.AttackRecovery, true},
		{model.AttackRecovery, model.AttackIdle, true},
		{model.AttackWindup, model.AttackRecovery, true},
		{model.AttackIdle, model.AttackActive, false},
		{model.AttackIdle, model.AttackRecovery, false},
		{model.AttackWindup, model.AttackIdle, false},
		{model.AttackActive, model.AttackIdle, false},
		{model.AttackActive, model.AttackWindup, false},
		{model.AttackRecovery, model.AttackWindup, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, legal(tt.from, tt.to))
		})
	}
}
