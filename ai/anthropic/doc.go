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


// Package anthropic provides an answer generator backed by the Anthropic API.
//
// Only generation is implemented here; embeddings and classification stay on
// the OpenAI-compatible backend. Use ai.OverrideGenerator to route generation
// to this package while keeping the rest of a provider intact:
//
//	base, err := openai.NewProvider(config)
//	generator, err := anthropic.NewGenerator(config)
//	provider := ai.OverrideGenerator(base, generator)
package anthropic
