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


// Package query answers natural-language questions against ingested
// documents and grounds every answer in retrieved sources.
//
// A Processor runs the pipeline for one request: embed the question,
// retrieve the most similar chunks from the candidate documents, assemble a
// prompt whose numbered source blocks follow retrieval order, generate an
// answer, and map the answer's [N] citation markers back to those sources.
// The user and assistant messages are appended to the session atomically;
// a failed query leaves the session exactly as it was.
//
// Retrieval finding nothing above the similarity floor is not a failure.
// The processor skips the model call and persists a stock assistant reply
// stating the sources were insufficient, which is distinct from a provider
// error the caller may retry.
package query
