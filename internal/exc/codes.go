package exc

const (
	CodeUnknownFatal                   = "G0000"
	CodeFileNotFound                   = "G0001"
	CodeUnsupportedFileSystemOperation = "G0002"
	CodeUnexpectedEOF                  = "G0003"
	CodeUnexpectedToken                = "G0004"
	CodeUnclosedLiteral                = "G0005"
	CodeDuplicateSymbol                = "G0006"
	CodeDuplicateRule                  = "G0007"
	CodeUndefinedReference             = "G0008"
	CodeUnsupportedConstruct           = "G0009"
	CodeNameCollision                  = "G0010"
	CodePermissionDenied               = "G0011"
	CodeUnsupportedFileFormat          = "G0012"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)
