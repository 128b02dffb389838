package idl

import (
	"fmt"
	"strconv"
)

// Parser turns a token stream into a Schema, accumulating ParseErrors and
// resynchronizing at the next recognizable declaration boundary instead
// of aborting on the first mistake.
type Parser struct {
	lex      *Lexer
	current  Token
	previous Token
	errs     ParseErrors
	scopes   []map[string]*ConstValue
}

// Parse lexes and parses src (attributing filename to diagnostics) into a
// Schema. Parse errors are non-fatal: Parse returns as much of the tree
// as it could recover and a non-nil ParseErrors value when any occurred.
func Parse(src, filename string) (*Schema, ParseErrors) {
	p := &Parser{lex: NewLexer(src, filename)}
	p.pushScope()
	p.advance()
	defs := p.parseDefinitionList(TokenEOF)
	if len(p.errs) > 0 {
		return &Schema{Definitions: defs}, p.errs
	}
	return &Schema{Definitions: defs}, nil
}

func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, map[string]*ConstValue{})
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) defineConst(name string, v *ConstValue) {
	p.scopes[len(p.scopes)-1][name] = v
}

func (p *Parser) lookupConst(name string) (*ConstValue, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, ok := p.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.Next()
		if p.current.Type != TokenError {
			break
		}
		p.errorAt(p.current.Pos, p.current.Error)
	}
}

func (p *Parser) check(t TokenType) bool {
	return p.current.Type == t
}

func (p *Parser) match(t TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(t TokenType, msg string) Token {
	tok := p.current
	if p.check(t) {
		p.advance()
		return tok
	}
	p.errorAt(p.current.Pos, msg)
	if !p.check(TokenEOF) {
		// Consume the unexpected token so callers always make forward
		// progress, even when a declaration is badly malformed.
		p.advance()
	}
	return tok
}

func (p *Parser) errorAt(pos Position, msg string) {
	p.errs = append(p.errs, &ParseError{Pos: pos, Message: msg})
}

// synchronize discards tokens until a plausible declaration boundary, so
// one malformed declaration doesn't cascade into spurious errors for the
// rest of the file.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) {
		if p.previous.Type == TokenSemicolon || p.previous.Type == TokenRBrace {
			return
		}
		switch p.current.Type {
		case TokenModule, TokenStruct, TokenUnion, TokenEnum, TokenTypedef, TokenConst:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseDefinitionList(end TokenType) []Definition {
	var defs []Definition
	for !p.check(end) && !p.check(TokenEOF) {
		d := p.parseDefinition()
		if d != nil {
			defs = append(defs, d)
		}
	}
	return defs
}

func (p *Parser) parseDefinition() Definition {
	annotations := p.parseAnnotations()

	switch {
	case p.match(TokenImport):
		for !p.check(TokenSemicolon) && !p.check(TokenEOF) {
			p.advance()
		}
		p.match(TokenSemicolon)
		return nil
	case p.check(TokenModule):
		return p.parseModule(annotations)
	case p.check(TokenStruct):
		return p.parseStruct(annotations)
	case p.check(TokenUnion):
		return p.parseUnion(annotations)
	case p.check(TokenEnum):
		return p.parseEnum(annotations)
	case p.check(TokenTypedef):
		return p.parseTypedef(annotations)
	case p.check(TokenConst):
		return p.parseConst(annotations)
	default:
		p.errorAt(p.current.Pos, fmt.Sprintf("expected a definition, got %q", p.current.Text))
		p.advance()
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseAnnotations() map[string]*Annotation {
	var out map[string]*Annotation
	for p.check(TokenAt) {
		p.advance()
		nameTok := p.current
		if p.check(TokenDefault) {
			// "default" lexes as a keyword but is also an annotation name.
			p.advance()
		} else {
			nameTok = p.consume(TokenIdent, "expected annotation name")
		}
		ann := &Annotation{Name: nameTok.Text}
		if p.match(TokenLParen) {
			if p.check(TokenRParen) {
				// "@Name()" — treat as no-params.
			} else if p.isNamedParamForm() {
				ann.Kind = AnnotationNamedParams
				ann.NamedParams = map[string]*ConstValue{}
				for {
					key := p.consume(TokenIdent, "expected annotation parameter name").Text
					p.consume(TokenEquals, "expected '=' in annotation parameter")
					ann.NamedParams[key] = p.parseConstExpr()
					if !p.match(TokenComma) {
						break
					}
				}
			} else {
				ann.Kind = AnnotationConstParam
				ann.Value = p.parseConstExpr()
			}
			p.consume(TokenRParen, "expected ')' to close annotation parameters")
		}
		if out == nil {
			out = map[string]*Annotation{}
		}
		out[ann.Name] = ann
	}
	return out
}

// isNamedParamForm peeks ahead for "IDENT =" without consuming, to
// distinguish @Name(k=v) from @Name(positional).
func (p *Parser) isNamedParamForm() bool {
	if p.current.Type != TokenIdent {
		return false
	}
	save := *p.lex
	saveCur, savePrev := p.current, p.previous
	p.advance()
	isNamed := p.current.Type == TokenEquals
	*p.lex = save
	p.current, p.previous = saveCur, savePrev
	return isNamed
}

func (p *Parser) parseModule(annotations map[string]*Annotation) Definition {
	pos := p.current.Pos
	p.advance() // "module"
	nameTok := p.consume(TokenIdent, "expected module name")
	p.consume(TokenLBrace, "expected '{' after module name")
	p.pushScope()
	defs := p.parseDefinitionList(TokenRBrace)
	p.popScope()
	p.consume(TokenRBrace, "expected '}' to close module")
	p.match(TokenSemicolon)
	return &Module{Position: pos, Name: nameTok.Text, Definitions: defs, Annotations: annotations}
}

func (p *Parser) parseStruct(annotations map[string]*Annotation) Definition {
	pos := p.current.Pos
	p.advance() // "struct"
	nameTok := p.consume(TokenIdent, "expected struct name")
	p.consume(TokenLBrace, "expected '{' after struct name")
	var fields []*Field
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		if p.check(TokenConst) {
			fields = append(fields, p.parseConstField())
			continue
		}
		before := len(p.errs)
		fields = append(fields, p.parseFieldDecl())
		if len(p.errs) > before && p.previous.Type != TokenSemicolon {
			// Skip the rest of a malformed member so the struct's own
			// closing brace is not consumed as part of it.
			for !p.check(TokenSemicolon) && !p.check(TokenRBrace) && !p.check(TokenEOF) {
				p.advance()
			}
			p.match(TokenSemicolon)
		}
	}
	p.consume(TokenRBrace, "expected '}' to close struct")
	p.match(TokenSemicolon)
	return &Struct{Position: pos, Name: nameTok.Text, Fields: fields, Annotations: annotations}
}

func (p *Parser) parseFieldDecl() *Field {
	annotations := p.parseAnnotations()
	pos := p.current.Pos
	typ, isSeq, seqBound, strBound := p.parseTypeSpec()
	nameTok := p.consume(TokenIdent, "expected field name")
	dims := p.parseArrayDims()
	p.consume(TokenSemicolon, "expected ';' after field declaration")
	return &Field{
		Position: pos, Name: nameTok.Text, Type: typ,
		ArrayLengths: dims, IsSequence: isSeq, SequenceBound: seqBound,
		StringUpperBound: strBound, Annotations: annotations,
	}
}

// parseConstField parses a `const` declaration appearing directly
// inside a struct body, producing a Field carrying a compile-time
// value instead of wire-encoded bytes.
func (p *Parser) parseConstField() *Field {
	pos := p.current.Pos
	p.advance() // "const"
	typ, _, _, _ := p.parseTypeSpec()
	nameTok := p.consume(TokenIdent, "expected constant name")
	p.consume(TokenEquals, "expected '=' in constant declaration")
	val := p.parseConstExpr()
	p.consume(TokenSemicolon, "expected ';' after constant declaration")
	p.defineConst(nameTok.Text, val)
	return &Field{Position: pos, Name: nameTok.Text, Type: typ, IsConstant: true, Value: val}
}

func (p *Parser) parseArrayDims() []int {
	var dims []int
	for p.match(TokenLBracket) {
		tok := p.consume(TokenInt, "expected array length")
		n, _ := parseIntLiteral(tok.Text)
		dims = append(dims, int(n))
		p.consume(TokenRBracket, "expected ']' to close array dimension")
	}
	return dims
}

// parseTypeSpec parses a primitive, sequence<>, string<>/wstring<>, or
// scoped type name, returning the canonical type tag plus any sequence
// or string bound attributes.
func (p *Parser) parseTypeSpec() (typ string, isSeq bool, seqBound *int, strBound *int) {
	switch {
	case p.check(TokenSequence):
		p.advance()
		p.consume(TokenLAngle, "expected '<' after 'sequence'")
		elemType, _, _, _ := p.parseTypeSpec()
		if p.match(TokenComma) {
			tok := p.consume(TokenInt, "expected sequence bound")
			n, _ := parseIntLiteral(tok.Text)
			ni := int(n)
			seqBound = &ni
		}
		p.consume(TokenRAngle, "expected '>' to close sequence")
		return elemType, true, seqBound, nil
	case p.check(TokenString_):
		p.advance()
		if p.match(TokenLAngle) {
			tok := p.consume(TokenInt, "expected string bound")
			n, _ := parseIntLiteral(tok.Text)
			ni := int(n)
			strBound = &ni
			p.consume(TokenRAngle, "expected '>' to close bounded string")
		}
		return PrimitiveString, false, nil, strBound
	case p.check(TokenWString):
		p.advance()
		if p.match(TokenLAngle) {
			tok := p.consume(TokenInt, "expected wstring bound")
			n, _ := parseIntLiteral(tok.Text)
			ni := int(n)
			strBound = &ni
			p.consume(TokenRAngle, "expected '>' to close bounded wstring")
		}
		return PrimitiveWString, false, nil, strBound
	default:
		return p.parsePrimitiveOrScopedName(), false, nil, nil
	}
}

func (p *Parser) parsePrimitiveOrScopedName() string {
	words := p.collectBuiltinWords()
	if words != nil {
		if canon, ok := normalizePrimitive(words); ok {
			return canon
		}
		p.errorAt(p.current.Pos, fmt.Sprintf("unrecognized primitive type %v", words))
		return PrimitiveInt32
	}
	return p.parseScopedName()
}

// collectBuiltinWords consumes a run of primitive-spelling keyword
// tokens (e.g. "unsigned long long") and returns their canonical words,
// or nil if the current token is not a primitive-spelling keyword.
func (p *Parser) collectBuiltinWords() []string {
	var words []string
	for {
		switch p.current.Type {
		case TokenShort:
			words = append(words, "short")
		case TokenLong:
			words = append(words, "long")
		case TokenUnsigned:
			words = append(words, "unsigned")
		case TokenDouble:
			words = append(words, "double")
		case TokenFloat:
			words = append(words, "float")
		case TokenOctet:
			words = append(words, "octet")
		case TokenByteKW:
			words = append(words, "byte")
		case TokenChar:
			words = append(words, "char")
		case TokenWChar:
			words = append(words, "wchar")
		case TokenBoolean:
			words = append(words, "boolean")
		case TokenInt8:
			words = append(words, "int8")
		case TokenUint8:
			words = append(words, "uint8")
		case TokenInt16:
			words = append(words, "int16")
		case TokenUint16:
			words = append(words, "uint16")
		case TokenInt32:
			words = append(words, "int32")
		case TokenUint32:
			words = append(words, "uint32")
		case TokenInt64:
			words = append(words, "int64")
		case TokenUint64:
			words = append(words, "uint64")
		default:
			return words
		}
		p.advance()
	}
}

func (p *Parser) parseScopedName() string {
	name := p.consume(TokenIdent, "expected type name").Text
	for p.check(TokenScope) {
		p.advance()
		name += "::" + p.consume(TokenIdent, "expected identifier after '::'").Text
	}
	return name
}

func (p *Parser) parseUnion(annotations map[string]*Annotation) Definition {
	pos := p.current.Pos
	p.advance() // "union"
	nameTok := p.consume(TokenIdent, "expected union name")
	p.consume(TokenSwitch, "expected 'switch' in union declaration")
	p.consume(TokenLParen, "expected '(' after 'switch'")
	switchType, _, _, _ := p.parseTypeSpec()
	p.consume(TokenRParen, "expected ')' after switch type")
	p.consume(TokenLBrace, "expected '{' to open union body")

	u := &Union{Position: pos, Name: nameTok.Text, SwitchType: switchType, Annotations: annotations}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		if p.match(TokenDefault) {
			p.consume(TokenColon, "expected ':' after 'default'")
			f := p.parseFieldDecl()
			u.Default = f
			continue
		}
		var predicates []*ConstValue
		for p.match(TokenCase) {
			predicates = append(predicates, p.parseConstExpr())
			p.consume(TokenColon, "expected ':' after case label")
		}
		if len(predicates) == 0 {
			p.errorAt(p.current.Pos, "expected 'case' or 'default' in union body")
			p.advance()
			continue
		}
		f := p.parseFieldDecl()
		u.Cases = append(u.Cases, &UnionCase{Predicates: predicates, Field: f})
	}
	p.consume(TokenRBrace, "expected '}' to close union")
	p.match(TokenSemicolon)
	return u
}

func (p *Parser) parseEnum(annotations map[string]*Annotation) Definition {
	pos := p.current.Pos
	p.advance() // "enum"
	nameTok := p.consume(TokenIdent, "expected enum name")
	p.consume(TokenLBrace, "expected '{' after enum name")

	e := &Enum{Position: pos, Name: nameTok.Text, Annotations: annotations}
	var next int64
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		enumAnnotations := p.parseAnnotations()
		enumPos := p.current.Pos
		enumName := p.consume(TokenIdent, "expected enumerator name").Text
		val := &ConstValue{Kind: ConstInt, Int: next}
		if ann, ok := enumAnnotations["value"]; ok && ann.Value != nil && ann.Value.Kind == ConstInt {
			val = &ConstValue{Kind: ConstInt, Int: ann.Value.Int}
		}
		c := &Constant{Position: enumPos, Name: enumName, Type: PrimitiveUint32, Value: val, Annotations: enumAnnotations}
		e.Enumerators = append(e.Enumerators, c)
		p.defineConst(enumName, val)
		p.defineConst(nameTok.Text+"::"+enumName, val)
		next = val.Int + 1
		if !p.match(TokenComma) {
			break
		}
	}
	p.consume(TokenRBrace, "expected '}' to close enum")
	p.match(TokenSemicolon)
	return e
}

func (p *Parser) parseTypedef(annotations map[string]*Annotation) Definition {
	pos := p.current.Pos
	p.advance() // "typedef"
	typ, isSeq, seqBound, _ := p.parseTypeSpec()
	nameTok := p.consume(TokenIdent, "expected typedef name")
	dims := p.parseArrayDims()
	p.consume(TokenSemicolon, "expected ';' after typedef")
	return &Typedef{
		Position: pos, Name: nameTok.Text, Type: typ,
		ArrayLengths: dims, IsSequence: isSeq, SequenceBound: seqBound,
		Annotations: annotations,
	}
}

func (p *Parser) parseConst(annotations map[string]*Annotation) Definition {
	pos := p.current.Pos
	p.advance() // "const"
	typ, _, _, _ := p.parseTypeSpec()
	nameTok := p.consume(TokenIdent, "expected constant name")
	p.consume(TokenEquals, "expected '=' in constant declaration")
	val := p.parseConstExpr()
	p.consume(TokenSemicolon, "expected ';' after constant declaration")
	p.defineConst(nameTok.Text, val)
	return &Constant{Position: pos, Name: nameTok.Text, Type: typ, Value: val, Annotations: annotations}
}

// parseConstExpr parses a constant expression: a literal, a prior
// constant or enumerator reference, or a '+'-joined sum of integer
// atoms. Adjacent string literals are concatenated.
func (p *Parser) parseConstExpr() *ConstValue {
	v := p.parseConstAtom()
	for p.check(TokenString) && v != nil && v.Kind == ConstString {
		next := p.parseConstAtom()
		if next != nil {
			v = &ConstValue{Kind: ConstString, Str: v.Str + next.Str}
		}
	}
	for p.check(TokenPlus) {
		p.advance()
		next := p.parseConstAtom()
		if v != nil && next != nil && v.Kind == ConstInt && next.Kind == ConstInt {
			v = &ConstValue{Kind: ConstInt, Int: v.Int + next.Int}
		}
	}
	return v
}

func (p *Parser) parseConstAtom() *ConstValue {
	switch {
	case p.check(TokenMinus):
		p.advance()
		tok := p.consume(TokenInt, "expected integer literal after '-'")
		n, _ := parseIntLiteral(tok.Text)
		return &ConstValue{Kind: ConstInt, Int: -n}
	case p.check(TokenInt):
		tok := p.current
		p.advance()
		n, _ := parseIntLiteral(tok.Text)
		return &ConstValue{Kind: ConstInt, Int: n}
	case p.check(TokenString):
		tok := p.current
		p.advance()
		return &ConstValue{Kind: ConstString, Str: tok.Text}
	case p.check(TokenTrue):
		p.advance()
		return &ConstValue{Kind: ConstBool, Bool: true}
	case p.check(TokenFalse):
		p.advance()
		return &ConstValue{Kind: ConstBool, Bool: false}
	case p.check(TokenIdent):
		name := p.parseScopedName()
		if v, ok := p.lookupConst(name); ok {
			return v
		}
		p.errorAt(p.current.Pos, fmt.Sprintf("unknown constant or enumerator %q", name))
		return nil
	default:
		p.errorAt(p.current.Pos, "expected a constant expression")
		p.advance()
		return nil
	}
}

func parseIntLiteral(text string) (int64, error) {
	if len(text) > 1 && (text[1] == 'x' || text[1] == 'X') {
		return strconv.ParseInt(text[2:], 16, 64)
	}
	return strconv.ParseInt(text, 10, 64)
}

// normalizePrimitive maps the multi-word IDL primitive spellings to the
// canonical tags used throughout the resolver and codec.
func normalizePrimitive(words []string) (string, bool) {
	key := ""
	for i, w := range words {
		if i > 0 {
			key += " "
		}
		key += w
	}
	switch key {
	case "short":
		return PrimitiveInt16, true
	case "unsigned short":
		return PrimitiveUint16, true
	case "long":
		return PrimitiveInt32, true
	case "unsigned long":
		return PrimitiveUint32, true
	case "long long":
		return PrimitiveInt64, true
	case "unsigned long long":
		return PrimitiveUint64, true
	case "float":
		return PrimitiveFloat32, true
	case "double":
		return PrimitiveFloat64, true
	case "long double":
		return PrimitiveFloat64, true
	case "octet", "byte":
		return PrimitiveUint8, true
	case "char":
		return PrimitiveUint8, true
	case "wchar":
		return PrimitiveUint16, true
	case "boolean":
		return PrimitiveBool, true
	case "int8":
		return PrimitiveInt8, true
	case "uint8":
		return PrimitiveUint8, true
	case "int16":
		return PrimitiveInt16, true
	case "uint16":
		return PrimitiveUint16, true
	case "int32":
		return PrimitiveInt32, true
	case "uint32":
		return PrimitiveUint32, true
	case "int64":
		return PrimitiveInt64, true
	case "uint64":
		return PrimitiveUint64, true
	default:
		return "", false
	}
}
