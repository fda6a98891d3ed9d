// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidToken indicates Humio rejected the API or ingest token.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid humio token")

	// ErrRepoNotFound indicates the repository or view does not exist or is not accessible.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates Humio is throttling requests.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("humio rate limit exceeded")

	// ErrQueryFailed indicates Humio accepted a search but could not run it,
	// usually because of a syntax error in the query.
	ErrQueryFailed = errors.New("query failed")

	// ErrNoRepositories indicates no readable repository matched the
	// requested patterns. Maps to exit code 2.
	ErrNoRepositories = errors.New("no matching repositories")

	// ErrUnknownEncoding indicates the encoding of an input file could not be
	// detected or is not supported.
	ErrUnknownEncoding = errors.New("unknown file encoding")
)
