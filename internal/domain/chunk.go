package domain

// ChunkMetadata is attached to every chunk persisted for a repository.
// Language is empty when the file extension is not in the language table.
type ChunkMetadata struct {
	RepoName   string `json:"repo_name"`
	CommitHash string `json:"commit_hash"`
	RepoURL    string `json:"repo_url,omitempty"`
	Language   string `json:"language,omitempty"`
}

// Chunk is a bounded slice of a source file's text, the unit of embedding
// and storage. Vector is nil until the embedding service has been called.
type Chunk struct {
	FilePath string        `json:"file_path"`
	Content  string        `json:"content"`
	Vector   []float32     `json:"-"`
	Metadata ChunkMetadata `json:"metadata"`
}

// SimilarChunk is a retrieval match returned by the vector store,
// carrying the cosine similarity to the query (higher = more relevant).
type SimilarChunk struct {
	ID         int64   `json:"id"`
	FilePath   string  `json:"file_path"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// RepoMetadata describes a cloned repository's identity.
type RepoMetadata struct {
	RepoName   string
	CommitHash string
}
