// Copyright (C) 2025 Vrite AI
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import "context"

// StubClient returns canned replies in order. It exists for handler and
// pipeline tests that need a deterministic backend with no network.
type StubClient struct {
	// Replies are returned one per Generate call; the last reply repeats
	// once the list is exhausted.
	Replies []string

	// Err, when set, is returned by every Generate call.
	Err error

	// Prompts records every prompt received, for assertions.
	Prompts []string

	calls int
}

// Generate implements the LLMClient interface.
func (s *StubClient) Generate(ctx context.Context, prompt string, _ GenerationParams) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Replies) == 0 {
		return "", nil
	}
	i := s.calls
	if i >= len(s.Replies) {
		i = len(s.Replies) - 1
	}
	s.calls++
	return s.Replies[i], nil
}

var _ LLMClient = (*StubClient)(nil)
