package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignment_Format(t *testing.T) {
	a := Assignment{1, -2.5, 0}
	assert.Equal(t, "a=1,b=-2.5,c=0", a.String())
	assert.Equal(t, "a=1\nb=-2.5\nc=0", a.Format("\n"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0", FormatValue(math.Copysign(0, -1)))
	assert.Equal(t, "0.1", FormatValue(0.1))
	assert.Equal(t, "-37", FormatValue(-37))
	assert.Equal(t, "1e+21", FormatValue(1e21))
}

func TestAssignment_CloneIsIndependent(t *testing.T) {
	a := Assignment{1, 2}
	b := a.Clone()
	b[0] = 9
	assert.Equal(t, Assignment{1, 2}, a)
}

func TestSolution_Script(t *testing.T) {
	s := &Solution{Expr1: "a+b", Expr2: "5", Witness: Assignment{2, 3}}
	assert.Equal(t, "a=2\nb=3\na+b == 5\n", s.Script())
}
