package ocr

// TranscribePrompt is the fixed instruction sent with every page image.
const TranscribePrompt = `This is a scanned handwritten diary page.

Transcribe the handwriting as accurately as possible into plain text. ` +
	`Preserve the original wording and approximate line breaks.

If any word or phrase is unclear or illegible, DO NOT guess. ` +
	`Instead, insert the token "<illegible>" in place of that word or phrase.

Do not add commentary, explanations, or summaries. ` +
	`Only output the transcribed diary content.`
