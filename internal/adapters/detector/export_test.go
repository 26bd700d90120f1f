package detector

// DetectForTest exposes the pure detection rule.
var DetectForTest = detect
