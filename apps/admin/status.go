package main

import (
	"context"
	"encoding/json"

	"github.com/trezcool/admissions/core/admission"
)

// status prints the same payload the HTTP endpoint would return.
func (cli *commandLine) status(ctx context.Context, appNo, mobile string) error {
	var payload interface{}

	res, err := cli.svc.GetStatus(ctx, admission.Query{ApplicationNumber: appNo, MobileNumber: mobile})
	if err != nil {
		payload = admission.NewErrorResult(err)
	} else {
		payload = res
	}

	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
