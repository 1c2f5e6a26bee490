package compiler

import (
	"strconv"
	"strings"

	"github.com/AsLeonardo/Compilador-Lusitano/util"
)

// A Scanner for the lusitano language.

// Lusitano has those elements:
// * KeyWord: inteiro, real, texto, logico, vazio, verdadeiro, falso, se, senao,
//   senaose, enquanto, para, de, ate, passo, funcao, retorna, escreva, leia,
//   e, ou, nao, var, const.
// * Operator: + - * / % ** == != < <= > >= = += -= *= /=
// * Delimiter: ( ) { } , ; :
// * Constant: integer (42), real (3.14, 2.5e-3), string ("xxx" or 'xxx')
// * Identifier: letters, digits, underscore, not starting with a digit.
// * Comment: /* */ and //, both skipped.

type TokenType int

const (
	IntTypeTP   TokenType = iota // inteiro
	RealTypeTP                   // real
	TextTypeTP                   // texto
	LogicTypeTP                  // logico
	VoidTypeTP                   // vazio
	TrueTP                       // verdadeiro
	FalseTP                      // falso
	IfTP                         // se
	ElseTP                       // senao
	ElseIfTP                     // senaose
	WhileTP                      // enquanto
	ForTP                        // para
	FromTP                       // de
	ToTP                         // ate
	StepTP                       // passo
	FunctionTP                   // funcao
	ReturnTP                     // retorna
	PrintTP                      // escreva
	ReadTP                       // leia
	AndTP                        // e
	OrTP                         // ou
	NotTP                        // nao
	VarTP                        // var
	ConstTP                      // const

	IntegerTP    // 42
	RealTP       // 3.14
	StringTP     // "xxx"
	IdentifierTP // varA

	AddTP            // +
	MinusTP          // -
	MultiplyTP       // *
	DivideTP         // /
	ModuloTP         // %
	PowerTP          // **
	EqualTP          // ==
	NotEqualTP       // !=
	LessTP           // <
	LessEqualTP      // <=
	GreaterTP        // >
	GreaterEqualTP   // >=
	AssignTP         // =
	AddAssignTP      // +=
	MinusAssignTP    // -=
	MultiplyAssignTP // *=
	DivideAssignTP   // /=

	LeftParenTP  // (
	RightParenTP // )
	LeftBraceTP  // {
	RightBraceTP // }
	CommaTP      // ,
	SemiColonTP  // ;
	ColonTP      // :

	EOFTP
)

// keyWordTokenTPMap is the mapping from keyWord to the corresponding TokenTP.
// Keyword match is case insensitive and takes priority over identifiers.
var keyWordTokenTPMap = map[string]TokenType{
	"inteiro":    IntTypeTP,
	"real":       RealTypeTP,
	"texto":      TextTypeTP,
	"logico":     LogicTypeTP,
	"vazio":      VoidTypeTP,
	"verdadeiro": TrueTP,
	"falso":      FalseTP,
	"se":         IfTP,
	"senao":      ElseTP,
	"senaose":    ElseIfTP,
	"enquanto":   WhileTP,
	"para":       ForTP,
	"de":         FromTP,
	"ate":        ToTP,
	"passo":      StepTP,
	"funcao":     FunctionTP,
	"retorna":    ReturnTP,
	"escreva":    PrintTP,
	"leia":       ReadTP,
	"e":          AndTP,
	"ou":         OrTP,
	"nao":        NotTP,
	"var":        VarTP,
	"const":      ConstTP,
}

type Token struct {
	tp     TokenType
	lexeme string
	// value holds the decoded literal: int64 for IntegerTP, float64 for
	// RealTP, string for StringTP. Nil for everything else.
	value  interface{}
	line   int
	column int
}

func (token *Token) describe() string {
	if token.tp == EOFTP {
		return "end of file"
	}
	return token.lexeme
}

type Scanner struct {
	source []byte
	tokens []*Token
	diags  *Diagnostics

	start       int
	current     int
	line        int
	column      int
	startLine   int
	startColumn int
}

func NewScanner(source string, diags *Diagnostics) *Scanner {
	return &Scanner{
		source: []byte(source),
		diags:  diags,
		line:   1,
		column: 1,
	}
}

// Scan materializes the full token sequence, terminated by an EOF marker.
// Unrecognized input records a lexical diagnostic and scanning continues, so
// every lexical error of a file is collected in one pass.
func (scanner *Scanner) Scan() []*Token {
	for !scanner.atEnd() {
		scanner.start = scanner.current
		scanner.startLine, scanner.startColumn = scanner.line, scanner.column
		scanner.scanToken()
	}
	scanner.tokens = append(scanner.tokens, &Token{tp: EOFTP, line: scanner.line, column: scanner.column})
	return scanner.tokens
}

func (scanner *Scanner) atEnd() bool {
	return scanner.current >= len(scanner.source)
}

func (scanner *Scanner) advance() byte {
	b := scanner.source[scanner.current]
	scanner.current++
	if b == '\n' {
		scanner.line++
		scanner.column = 1
	} else {
		scanner.column++
	}
	return b
}

func (scanner *Scanner) peek() byte {
	if scanner.atEnd() {
		return 0
	}
	return scanner.source[scanner.current]
}

func (scanner *Scanner) peekNext() byte {
	if scanner.current+1 >= len(scanner.source) {
		return 0
	}
	return scanner.source[scanner.current+1]
}

// match consumes the current byte only when it equals expected.
func (scanner *Scanner) match(expected byte) bool {
	if scanner.atEnd() || scanner.source[scanner.current] != expected {
		return false
	}
	scanner.current++
	scanner.column++
	return true
}

func (scanner *Scanner) lexeme() string {
	return string(scanner.source[scanner.start:scanner.current])
}

func (scanner *Scanner) addToken(tp TokenType) {
	scanner.addLiteral(tp, nil)
}

func (scanner *Scanner) addLiteral(tp TokenType, value interface{}) {
	scanner.tokens = append(scanner.tokens, &Token{
		tp:     tp,
		lexeme: scanner.lexeme(),
		value:  value,
		line:   scanner.startLine,
		column: scanner.startColumn,
	})
}

func (scanner *Scanner) scanToken() {
	b := scanner.advance()
	switch {
	case b == ' ' || b == '\t' || b == '\r' || b == '\n':
		return
	case b == '"' || b == '\'':
		scanner.scanString(b)
	case util.IsNumber(b):
		scanner.scanNumber()
	case util.IsLetterOrUnderscore(b):
		scanner.scanIdentifierOrKeyword()
	default:
		scanner.scanOperator(b)
	}
}

func (scanner *Scanner) scanOperator(b byte) {
	switch b {
	case '(':
		scanner.addToken(LeftParenTP)
	case ')':
		scanner.addToken(RightParenTP)
	case '{':
		scanner.addToken(LeftBraceTP)
	case '}':
		scanner.addToken(RightBraceTP)
	case ',':
		scanner.addToken(CommaTP)
	case ';':
		scanner.addToken(SemiColonTP)
	case ':':
		scanner.addToken(ColonTP)
	case '%':
		scanner.addToken(ModuloTP)
	case '+':
		if scanner.match('=') {
			scanner.addToken(AddAssignTP)
		} else {
			scanner.addToken(AddTP)
		}
	case '-':
		if scanner.match('=') {
			scanner.addToken(MinusAssignTP)
		} else {
			scanner.addToken(MinusTP)
		}
	case '*':
		if scanner.match('*') {
			scanner.addToken(PowerTP)
		} else if scanner.match('=') {
			scanner.addToken(MultiplyAssignTP)
		} else {
			scanner.addToken(MultiplyTP)
		}
	case '/':
		if scanner.match('/') {
			scanner.skipLineComment()
		} else if scanner.match('*') {
			scanner.skipBlockComment()
		} else if scanner.match('=') {
			scanner.addToken(DivideAssignTP)
		} else {
			scanner.addToken(DivideTP)
		}
	case '=':
		if scanner.match('=') {
			scanner.addToken(EqualTP)
		} else {
			scanner.addToken(AssignTP)
		}
	case '!':
		if scanner.match('=') {
			scanner.addToken(NotEqualTP)
		} else {
			scanner.diags.addLexical(UnrecognizedCharacter, scanner.startLine, scanner.startColumn,
				"unexpected character '!', did you mean 'nao' or '!='?")
		}
	case '<':
		if scanner.match('=') {
			scanner.addToken(LessEqualTP)
		} else {
			scanner.addToken(LessTP)
		}
	case '>':
		if scanner.match('=') {
			scanner.addToken(GreaterEqualTP)
		} else {
			scanner.addToken(GreaterTP)
		}
	default:
		scanner.diags.addLexical(UnrecognizedCharacter, scanner.startLine, scanner.startColumn,
			"unrecognized character '%c' (code %d)", b, b)
	}
}

func (scanner *Scanner) skipLineComment() {
	for !scanner.atEnd() && scanner.peek() != '\n' {
		scanner.advance()
	}
}

func (scanner *Scanner) skipBlockComment() {
	openLine := scanner.startLine
	for !scanner.atEnd() {
		if scanner.peek() == '*' && scanner.peekNext() == '/' {
			scanner.advance()
			scanner.advance()
			return
		}
		scanner.advance()
	}
	scanner.diags.addLexical(UnterminatedComment, scanner.line, scanner.column,
		"unterminated block comment (opened at line %d)", openLine)
}

func (scanner *Scanner) scanString(quote byte) {
	var value []byte
	for {
		if scanner.atEnd() || scanner.peek() == '\n' {
			scanner.diags.addLexical(UnterminatedString, scanner.startLine, scanner.startColumn,
				"unterminated string")
			return
		}
		if scanner.peek() == quote {
			scanner.advance()
			scanner.addLiteral(StringTP, string(value))
			return
		}
		if scanner.peek() == '\\' {
			scanner.advance()
			if scanner.atEnd() {
				scanner.diags.addLexical(UnterminatedString, scanner.startLine, scanner.startColumn,
					"unterminated string after escape character")
				return
			}
			escape := scanner.advance()
			switch escape {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			case 'r':
				value = append(value, '\r')
			case '\\', '"', '\'':
				value = append(value, escape)
			default:
				value = append(value, '\\', escape)
			}
			continue
		}
		value = append(value, scanner.advance())
	}
}

func (scanner *Scanner) scanNumber() {
	for util.IsNumber(scanner.peek()) {
		scanner.advance()
	}
	isReal := false
	if scanner.peek() == '.' && util.IsNumber(scanner.peekNext()) {
		isReal = true
		scanner.advance()
		for util.IsNumber(scanner.peek()) {
			scanner.advance()
		}
	}
	// Scientific notation: 1e10, 2.5e-3.
	if scanner.peek() == 'e' || scanner.peek() == 'E' {
		isReal = true
		scanner.advance()
		if scanner.peek() == '+' || scanner.peek() == '-' {
			scanner.advance()
		}
		if !util.IsNumber(scanner.peek()) {
			scanner.diags.addLexical(MalformedNumber, scanner.startLine, scanner.startColumn,
				"malformed scientific notation, expected digit after 'e'")
			return
		}
		for util.IsNumber(scanner.peek()) {
			scanner.advance()
		}
	}
	if isReal {
		v, err := strconv.ParseFloat(scanner.lexeme(), 64)
		if err != nil {
			scanner.diags.addLexical(MalformedNumber, scanner.startLine, scanner.startColumn,
				"real literal out of range: %s", scanner.lexeme())
			return
		}
		scanner.addLiteral(RealTP, v)
		return
	}
	v, err := strconv.ParseInt(scanner.lexeme(), 10, 64)
	if err != nil {
		scanner.diags.addLexical(MalformedNumber, scanner.startLine, scanner.startColumn,
			"integer literal out of range: %s", scanner.lexeme())
		return
	}
	scanner.addLiteral(IntegerTP, v)
}

func (scanner *Scanner) scanIdentifierOrKeyword() {
	for util.IsLetterOrUnderscoreOrNumber(scanner.peek()) {
		scanner.advance()
	}
	keyWordTP, isKeyWord := keyWordTokenTPMap[strings.ToLower(scanner.lexeme())]
	if isKeyWord {
		scanner.addToken(keyWordTP)
		return
	}
	scanner.addToken(IdentifierTP)
}
