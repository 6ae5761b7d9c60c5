package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/admissions/core"
	"github.com/trezcool/admissions/core/admission"
)

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "TEST : ", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)

	q := admission.Query{ApplicationNumber: "KG2024001", MobileNumber: "9876543210"}
	logger.Warn("loading interview marks", errors.New("statement timeout"), q)

	out := buf.String()
	assert.Contains(t, out, "loading interview marks")
	assert.Contains(t, out, "statement timeout")
	assert.Contains(t, out, "application_number=KG2024001")
	assert.NotContains(t, out, "9876543210")
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), &core.Config{})
	logger.Enable(false)

	err := errors.New("boom")
	extras := map[string]interface{}{"path": "/v1/application-status"}
	q := admission.Query{ApplicationNumber: "KG2024001", MobileNumber: "9876543210"}

	args := logger.prepare("resolving", []interface{}{err, q, extras, q})
	assert.Equal(t, []interface{}{"resolving", err, extras}, args)
}
