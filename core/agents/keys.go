package agents

// Session state slots shared by the code pipeline stages. Each is written
// once, in this order, by the stage that owns it.
const (
	KeyGeneratedCode  = "generated_code"
	KeyReviewComments = "review_comments"
	KeyRefactoredCode = "refactored_code"
)
