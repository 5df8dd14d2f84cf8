// Copyright 2025 Poiesic Systems
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


package openai

import "regexp"

// Small local models occasionally drop the opening quote of an object key,
// producing fragments like `{index": 0}`. The pattern matches a bare key
// that still carries its closing quote and colon.
var unquotedKeyPattern = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)("\s*:)`)

// Trailing commas before a closing bracket are the other recurring defect.
var trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)

// repairJSON attempts to fix common JSON formatting issues from LLM
// responses before unmarshaling.
func repairJSON(s string) string {
	s = unquotedKeyPattern.ReplaceAllString(s, `$1"$2$3`)
	s = trailingCommaPattern.ReplaceAllString(s, `$1`)
	return s
}
