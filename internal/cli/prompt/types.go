// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prompt

import "errors"

// ErrNonInteractive is returned by prompters that cannot ask questions.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// ValidationError represents an input validation failure. The offending
// value is never included so secrets typed by mistake do not leak.
type ValidationError struct {
	InputName string
	Reason    string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// MaxRetries is the number of attempts allowed for a single answer.
const MaxRetries = 3

// MaxInputSize is the maximum accepted length of an answer in bytes.
const MaxInputSize = 65536
