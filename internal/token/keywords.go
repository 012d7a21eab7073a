package token

var keywords = map[string]Kind{
	"if":       KwIf,
	"else":     KwElse,
	"for":      KwFor,
	"while":    KwWhile,
	"do":       KwDo,
	"switch":   KwSwitch,
	"case":     KwCase,
	"default":  KwDefault,
	"return":   KwReturn,
	"goto":     KwGoto,
	"break":    KwBreak,
	"continue": KwContinue,
	"struct":   KwStruct,
	"union":    KwUnion,
	"enum":     KwEnum,
	"typedef":  KwTypedef,
	"static":   KwStatic,
	"extern":   KwExtern,
	"const":    KwConst,
	"volatile": KwVolatile,
	"unsigned": KwUnsigned,
	"signed":   KwSigned,
	"int":      KwInt,
	"char":     KwChar,
	"float":    KwFloat,
	"double":   KwDouble,
	"long":     KwLong,
	"short":    KwShort,
	"void":     KwVoid,
	"sizeof":   KwSizeof,
	"_Bool":    KwBool,
	"register": KwRegister,
	"inline":   KwInline,
	"restrict": KwRestrict,
}

// LookupKeyword returns the keyword kind for ident, if it is one.
// C keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
