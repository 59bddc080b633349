package textmatch

// VerificationResult reports whether a transcript matched a reference text.
// Match is true exactly when Similarity >= the threshold passed to Verify.
// Transcript preserves the raw (un-normalized) transcript for diagnostics.
type VerificationResult struct {
	Match      bool    `json:"match"`
	Similarity float64 `json:"similarity"`
	Transcript string  `json:"transcript"`
}

// Verify normalizes both strings, scores their similarity, and compares it
// against the threshold. The threshold is caller-supplied on purpose: rubric
// strictness varies by deployment, so no default is baked in here.
func Verify(transcript, reference string, threshold float64) VerificationResult {
	similarity := Similarity(Normalize(transcript), Normalize(reference))
	return VerificationResult{
		Match:      similarity >= threshold,
		Similarity: similarity,
		Transcript: transcript,
	}
}
