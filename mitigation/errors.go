// SPDX-License-Identifier: MIT

package mitigation

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/tuneq"
)

var (
	// ErrSessionClosed is returned by Session.Run after Close.
	ErrSessionClosed = errors.New("mitigation: session is closed")

	// ErrNilRunner is returned by Open when no runner is supplied.
	ErrNilRunner = fmt.Errorf("%w: mitigation: runner is nil", tuneq.ErrConfig)

	// ErrRunnerResult is returned by Session.Run when the runner does not
	// return exactly one result for the submitted circuit.
	ErrRunnerResult = errors.New("mitigation: runner returned an unexpected number of results")

	// ErrRegisterMismatch is returned by Session.Run when raw counts are not
	// as wide as the calibrated register.
	ErrRegisterMismatch = errors.New("mitigation: counts width does not match the calibrated register")
)
