package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xraph/forge"

	"github.com/xraph/accessmatrix"
)

// mapError maps domain errors to Forge HTTP errors. Directory failures and
// unknown errors pass through and surface as server errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isBadInput(err) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, accessmatrix.ErrRuleNotFound) {
		return forge.NotFound(err.Error())
	}
	return err
}

func isBadInput(err error) bool {
	return errors.Is(err, accessmatrix.ErrValidation) ||
		errors.Is(err, accessmatrix.ErrInvalidSubjectType) ||
		errors.Is(err, accessmatrix.ErrSubjectNotFound) ||
		errors.Is(err, accessmatrix.ErrAmbiguousSubject)
}

// parseRuleID parses a positive rule ID from a path parameter.
func parseRuleID(raw string) (int64, error) {
	ruleID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ruleID <= 0 {
		return 0, fmt.Errorf("invalid rule ID %q", raw)
	}
	return ruleID, nil
}
