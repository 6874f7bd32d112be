// Package parse builds the Mood syntax tree from a token stream by
// recursive descent, using precedence climbing for infix operators.
package parse

import (
	"fmt"

	"github.com/moodlang/mood/diag"
	"github.com/moodlang/mood/internal/ast"
	"github.com/moodlang/mood/internal/lex"
)

// Binding powers; a higher power binds tighter.
var bindingPower = map[lex.Kind]int{
	lex.Plus: 0,
	lex.Star: 1,
	lex.Eq:   2,
}

var operatorText = map[lex.Kind]string{
	lex.Plus: "+",
	lex.Star: "*",
	lex.Eq:   "==",
}

// Result is a parsed compilation unit. Nodes is the arena: the node with
// NodeID i sits at Nodes[i], so len(Nodes) is the ID space size.
type Result struct {
	Program *ast.Program
	Nodes   []ast.Node
}

type parser struct {
	tokens []lex.Token
	pos    int
	nodes  []ast.Node
}

// Parse consumes the whole token stream into a Program. The first syntax
// error aborts the parse.
func Parse(tokens []lex.Token) (*Result, *diag.Diagnostic) {
	p := &parser{tokens: tokens}
	program, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return &Result{Program: program, Nodes: p.nodes}, nil
}

func (p *parser) current() lex.Token { return p.tokens[p.pos] }

func (p *parser) previous() lex.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) at(kind lex.Kind) bool { return p.current().Kind == kind }

func (p *parser) advance() lex.Token {
	tok := p.tokens[p.pos]
	if tok.Kind != lex.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind lex.Kind) (lex.Token, *diag.Diagnostic) {
	if !p.at(kind) {
		tok := p.current()
		return lex.Token{}, diag.Errorf(tok.Span,
			fmt.Sprintf("expected %q here", kind.String()),
			fmt.Sprintf("Expected %q, but found %q", kind.String(), tok.Kind.String()))
	}
	return p.advance(), nil
}

// meta allocates the next dense node ID and closes the span at the token
// before the current one. register must be called on the node built from
// it before any further meta call, keeping Nodes indexable by ID.
func (p *parser) meta(start diag.Location) ast.Meta {
	return ast.Meta{
		NodeID: ast.NodeID(len(p.nodes)),
		Loc:    diag.Union(start, p.previous().Span),
	}
}

func (p *parser) register(n ast.Node) {
	p.nodes = append(p.nodes, n)
}

// identifier turns an already-consumed Ident token into a node.
func (p *parser) identifier(tok lex.Token) *ast.Identifier {
	id := &ast.Identifier{
		Meta: ast.Meta{NodeID: ast.NodeID(len(p.nodes)), Loc: tok.Span},
		Name: tok.Text,
	}
	p.register(id)
	return id
}

func (p *parser) expectIdentifier() (*ast.Identifier, *diag.Diagnostic) {
	tok, err := p.expect(lex.Ident)
	if err != nil {
		return nil, err
	}
	return p.identifier(tok), nil
}

func (p *parser) parseProgram() (*ast.Program, *diag.Diagnostic) {
	start := p.current().Span

	var decls []ast.Node
	for !p.at(lex.EOF) {
		var decl ast.Node
		var err *diag.Diagnostic
		switch p.current().Kind {
		case lex.Struct:
			decl, err = p.parseStructDeclaration()
		case lex.Enum:
			decl, err = p.parseEnumDeclaration()
		case lex.Pub, lex.Fn:
			decl, err = p.parseFunctionDeclaration()
		default:
			tok := p.current()
			return nil, diag.Errorf(tok.Span, "expected a definition here",
				fmt.Sprintf("Expected a struct, enum or function definition, but found %q", tok.Kind.String()))
		}
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}

	program := &ast.Program{Meta: p.meta(start), Declarations: decls}
	p.register(program)
	return program, nil
}

func (p *parser) parseStructDeclaration() (*ast.StructDeclaration, *diag.Diagnostic) {
	start := p.advance().Span // struct

	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.LBrace); err != nil {
		return nil, err
	}

	var fields []*ast.StructField
	for !p.at(lex.RBrace) {
		fieldName, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.Colon); err != nil {
			return nil, err
		}
		fieldType, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.StructField{Name: fieldName, Type: fieldType})
		if !p.at(lex.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lex.RBrace); err != nil {
		return nil, err
	}

	decl := &ast.StructDeclaration{Meta: p.meta(start), Name: name, Fields: fields}
	p.register(decl)
	return decl, nil
}

func (p *parser) parseEnumDeclaration() (*ast.EnumDeclaration, *diag.Diagnostic) {
	start := p.advance().Span // enum

	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.LBrace); err != nil {
		return nil, err
	}

	var variants []*ast.EnumVariant
	for !p.at(lex.RBrace) {
		variantName, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		variant := &ast.EnumVariant{Name: variantName}
		if p.at(lex.LParen) {
			p.advance()
			if variant.Payload, err = p.expectIdentifier(); err != nil {
				return nil, err
			}
			if _, err := p.expect(lex.RParen); err != nil {
				return nil, err
			}
		}
		variants = append(variants, variant)
		if !p.at(lex.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lex.RBrace); err != nil {
		return nil, err
	}

	decl := &ast.EnumDeclaration{Meta: p.meta(start), Name: name, Variants: variants}
	p.register(decl)
	return decl, nil
}

func (p *parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, *diag.Diagnostic) {
	start := p.current().Span
	pub := false
	if p.at(lex.Pub) {
		pub = true
		p.advance()
	}
	if _, err := p.expect(lex.Fn); err != nil {
		return nil, err
	}

	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.LParen); err != nil {
		return nil, err
	}

	var params []*ast.Parameter
	for !p.at(lex.RParen) {
		paramStart := p.current().Span
		paramName, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.Colon); err != nil {
			return nil, err
		}
		paramType, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		param := &ast.Parameter{Meta: p.meta(paramStart), Name: paramName, Type: paramType}
		p.register(param)
		params = append(params, param)
		if !p.at(lex.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lex.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Colon); err != nil {
		return nil, err
	}
	returnType, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockExpression()
	if err != nil {
		return nil, err
	}

	decl := &ast.FunctionDeclaration{
		Meta:       p.meta(start),
		Pub:        pub,
		Name:       name,
		Parameters: params,
		ReturnType: returnType,
		Body:       body,
	}
	p.register(decl)
	return decl, nil
}

func (p *parser) parseBlockExpression() (*ast.BlockExpression, *diag.Diagnostic) {
	start := p.current().Span
	if _, err := p.expect(lex.LBrace); err != nil {
		return nil, err
	}

	var exprs []ast.Expr
	for !p.at(lex.RBrace) {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if !p.at(lex.Semicolon) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lex.RBrace); err != nil {
		return nil, err
	}

	block := &ast.BlockExpression{Meta: p.meta(start), Expressions: exprs}
	p.register(block)
	return block, nil
}

// parseExpression climbs precedence: it keeps folding infix operators while
// the upcoming operator binds at least as tightly as minPower.
func (p *parser) parseExpression(minPower int) (ast.Expr, *diag.Diagnostic) {
	start := p.current().Span
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.current()
		if tok.Kind == lex.Minus || tok.Kind == lex.Slash {
			return nil, diag.Errorf(tok.Span, "this operator is not supported",
				fmt.Sprintf("Expected an operator (one of +, * or ==), but found %q", tok.Kind.String()))
		}
		power, ok := bindingPower[tok.Kind]
		if !ok || power < minPower {
			return left, nil
		}
		p.advance()

		right, err := p.parseExpression(power + 1)
		if err != nil {
			return nil, err
		}
		bin := &ast.BinaryExpression{
			Meta:     p.meta(start),
			Operator: operatorText[tok.Kind],
			Left:     left,
			Right:    right,
		}
		p.register(bin)
		left = bin
	}
}

func (p *parser) parsePrimary() (ast.Expr, *diag.Diagnostic) {
	switch tok := p.current(); tok.Kind {
	case lex.Let:
		return p.parseVariableDeclaration()
	case lex.Number:
		return p.parseNumericLiteral()
	case lex.Ident:
		return p.parseIdentifierExpression()
	case lex.LParen:
		p.advance()
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, diag.Errorf(tok.Span, "expected an expression here",
			fmt.Sprintf("Expected an expression, but found %q", tok.Kind.String()))
	}
}

func (p *parser) parseVariableDeclaration() (ast.Expr, *diag.Diagnostic) {
	start := p.advance().Span // let

	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Colon); err != nil {
		return nil, err
	}
	typ, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lex.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	decl := &ast.VariableDeclaration{Meta: p.meta(start), Name: name, Type: typ, Value: value}
	p.register(decl)
	return decl, nil
}

// parseNumericLiteral parses `digits ('.' digits)? '_' suffix`. The suffix
// is mandatory and a fractional part is only legal under _f64.
func (p *parser) parseNumericLiteral() (ast.Expr, *diag.Diagnostic) {
	start := p.current().Span
	value := p.advance().Text

	fractional := false
	if p.at(lex.Dot) {
		fractional = true
		p.advance()
		frac, err := p.expect(lex.Number)
		if err != nil {
			return nil, err
		}
		value += "." + frac.Text
	}

	if !p.at(lex.Underscore) {
		span := diag.Union(start, p.previous().Span)
		return nil, diag.Errorf(span, "missing _i32 or _f64 suffix",
			"Numeric literals require an explicit _i32 or _f64 type suffix")
	}
	p.advance()

	suffix, err := p.expect(lex.Ident)
	if err != nil {
		return nil, err
	}
	if suffix.Text != "i32" && suffix.Text != "f64" {
		return nil, diag.Errorf(suffix.Span, "expected i32 or f64",
			fmt.Sprintf("Expected a numeric type suffix of i32 or f64, but found %q", suffix.Text))
	}
	if fractional && suffix.Text != "f64" {
		return nil, diag.Errorf(suffix.Span, "a fractional literal must be f64",
			"A literal with a fractional part requires the _f64 suffix")
	}
	annotation := p.identifier(suffix)

	lit := &ast.Literal{Meta: p.meta(start), Value: value, Annotation: annotation}
	p.register(lit)
	return lit, nil
}

// parseIdentifierExpression disambiguates on one token of lookahead: a
// struct construction, member access, enum path, call, or plain name.
// true and false parse as bool literals.
func (p *parser) parseIdentifierExpression() (ast.Expr, *diag.Diagnostic) {
	start := p.current().Span
	tok := p.advance()

	if tok.Text == "true" || tok.Text == "false" {
		annotation := &ast.Identifier{
			Meta: ast.Meta{NodeID: ast.NodeID(len(p.nodes)), Loc: tok.Span},
			Name: "bool",
		}
		p.register(annotation)
		lit := &ast.Literal{Meta: p.meta(start), Value: tok.Text, Annotation: annotation}
		p.register(lit)
		return lit, nil
	}

	switch p.current().Kind {
	case lex.LBrace:
		return p.parseStructConstruction(start, tok)
	case lex.Dot:
		object := p.identifier(tok)
		p.advance()
		field, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		member := &ast.MemberExpression{Meta: p.meta(start), Object: object, Field: field}
		p.register(member)
		return member, nil
	case lex.ColonColon:
		return p.parseExpressionPath(start, tok)
	case lex.LParen:
		callee := p.identifier(tok)
		p.advance()
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		call := &ast.CallExpression{Meta: p.meta(start), Callee: callee, Args: args}
		p.register(call)
		return call, nil
	default:
		return p.identifier(tok), nil
	}
}

func (p *parser) parseStructConstruction(start diag.Location, nameTok lex.Token) (ast.Expr, *diag.Diagnostic) {
	name := p.identifier(nameTok)
	p.advance() // {

	var fields []*ast.FieldInit
	for !p.at(lex.RBrace) {
		fieldName, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lex.Colon); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.FieldInit{Name: fieldName, Value: value})
		if !p.at(lex.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lex.RBrace); err != nil {
		return nil, err
	}

	con := &ast.StructConstruction{Meta: p.meta(start), Name: name, Fields: fields}
	p.register(con)
	return con, nil
}

func (p *parser) parseExpressionPath(start diag.Location, headTok lex.Token) (ast.Expr, *diag.Diagnostic) {
	head := p.identifier(headTok)
	p.advance() // ::

	variant, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	path := &ast.ExpressionPath{Head: head, Variant: variant}
	if p.at(lex.LParen) {
		p.advance()
		path.HasArgs = true
		if path.Args, err = p.parseArguments(); err != nil {
			return nil, err
		}
	}
	path.Meta = p.meta(start)
	p.register(path)
	return path, nil
}

// parseArguments parses a possibly empty argument list after a consumed
// "(", through the closing ")".
func (p *parser) parseArguments() ([]ast.Expr, *diag.Diagnostic) {
	var args []ast.Expr
	for !p.at(lex.RParen) {
		arg, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.at(lex.Comma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lex.RParen); err != nil {
		return nil, err
	}
	return args, nil
}
