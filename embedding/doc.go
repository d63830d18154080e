// Package embedding defines the vector model shared across neuromap and the
// contract with the external embedding subsystem. It includes:
//   - Vector: a fixed-dimension float32 embedding of one text item
//   - Embedder: batched, order-preserving text-to-vector interface
//   - CosineSimilarity: the similarity primitive used for ranking
//   - Vector BLOB encoding for the session catalog
package embedding
