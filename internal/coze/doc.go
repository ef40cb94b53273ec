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
Package coze is the HTTP client for the Coze workflow API.

It covers the four endpoints the workflow runner needs: streaming runs,
asynchronous runs, run-history queries and the workflow directory.
Remote payloads whose shape varies (plain strings or JSON values) are
decoded at this boundary into a Payload so callers never branch on
runtime types.

# Basic Usage

	c, err := coze.New(
	    coze.WithToken(token),
	    coze.WithBaseURL("https://api.coze.cn"),
	)
	if err != nil {
	    return err
	}

	events, err := c.StreamRun(ctx, coze.RunRequest{
	    WorkflowID: "7340000000000000001",
	    Parameters: parameter.Coerce(params),
	})
	for ev := range events {
	    // ev.Err is set on read failures; otherwise ev.Chunk holds the event
	}

# Errors

Every failed exchange is reported as *errors.TransportError: network
failures, HTTP statuses >= 400, envelopes with a non-zero "code" and
undecodable bodies. Each call is attempted once.

# Authentication

The credential is attached as a Bearer token by an oauth2.Transport layered
over the httpclient transport stack. It is used exactly as given.
*/
package coze
