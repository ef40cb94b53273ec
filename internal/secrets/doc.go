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

/*
Package secrets resolves the Coze API token.

The token is looked up in a priority-ordered chain of backends:

	env      - COZE_API_TOKEN (priority 100, read-only)
	keychain - OS keychain, service "cozeflow" (priority 50)

Usage:

	resolver := secrets.NewResolver(
	    secrets.NewEnvBackend(),
	    secrets.NewKeychainBackend(),
	)
	token, source, err := resolver.Token(ctx)

"cozeflow token set" stores the token in the keychain; the environment
always wins when both are present.
*/
package secrets
