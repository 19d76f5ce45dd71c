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


// Package search provides vector retrieval over stored document chunks.
//
// The Retriever scores the chunks of a candidate document set against a
// query vector by cosine similarity, keeps everything at or above a
// similarity floor, and returns the top results with their document titles
// attached. Result order is similarity rank and defines the source numbers
// used for citation downstream.
//
// An empty candidate set is an error (ErrNoCandidates): callers decide
// whether to search every document or reject the query, and the retriever
// refuses to guess.
package search
