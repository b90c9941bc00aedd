package parser

import (
	"testing"

	"github.com/covenant-lang/covenant/internal/compiler/ast"
	"github.com/covenant-lang/covenant/internal/compiler/lexer"
)

// parseSource tokenizes and parses source, failing the test on either a
// lex error or a parse error.
func parseSource(t *testing.T, source string) *ast.Program {
	t.Helper()

	tokens, err := lexer.New(source, "test.cov").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}

	program, err := New(tokens).Parse()
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return program
}

// parseSourceExpectError tokenizes and parses source, failing the test
// unless parsing returns an error.
func parseSourceExpectError(t *testing.T, source string) error {
	t.Helper()

	tokens, err := lexer.New(source, "test.cov").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}

	_, err = New(tokens).Parse()
	if err == nil {
		t.Fatalf("expected a parse error, got none")
	}
	return err
}

func TestParser_FileHeader(t *testing.T) {
	source := "intent: \"Move funds safely between accounts\"\n" +
		"scope: finance.accounts\n" +
		"risk: high\n" +
		"requires: [ledger.write, audit.log]\n" +
		"\n" +
		"contract noop() -> Bool\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)

	if program.Header == nil {
		t.Fatal("expected a file header")
	}
	if program.Header.Intent == nil || program.Header.Intent.Text == "" {
		t.Errorf("expected non-empty intent text, got %+v", program.Header.Intent)
	}
	if program.Header.Scope == nil || program.Header.Scope.Path != "finance.accounts" {
		t.Errorf("expected scope 'finance.accounts', got %+v", program.Header.Scope)
	}
	if program.Header.Risk == nil || program.Header.Risk.Level != ast.RiskHigh {
		t.Errorf("expected risk level high, got %+v", program.Header.Risk)
	}
	if program.Header.Requires == nil || len(program.Header.Requires.Capabilities) != 2 {
		t.Fatalf("expected 2 required capabilities, got %+v", program.Header.Requires)
	}
	if program.Header.Requires.Capabilities[0] != "ledger.write" {
		t.Errorf("expected first capability 'ledger.write', got %q", program.Header.Requires.Capabilities[0])
	}
}

func TestParser_FileHeaderIsOptional(t *testing.T) {
	source := "contract noop() -> Bool\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	if program.Header != nil {
		t.Errorf("expected no file header, got %+v", program.Header)
	}
}

func TestParser_ContractSignature(t *testing.T) {
	source := "contract transfer(amount: Int, destination: Account) -> Bool\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	if len(program.Contracts) != 1 {
		t.Fatalf("expected 1 contract, got %d", len(program.Contracts))
	}

	c := program.Contracts[0]
	if c.Name != "transfer" {
		t.Errorf("expected contract name 'transfer', got %q", c.Name)
	}
	if len(c.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(c.Params))
	}
	if c.Params[0].Name != "amount" {
		t.Errorf("expected first param 'amount', got %q", c.Params[0].Name)
	}
	simple, ok := c.Params[0].Type.(*ast.SimpleType)
	if !ok || simple.Name != "Int" {
		t.Errorf("expected first param type SimpleType(Int), got %+v", c.Params[0].Type)
	}
	if c.ReturnType == nil {
		t.Fatal("expected a return type")
	}
}

func TestParser_ContractMissingArrowRejected(t *testing.T) {
	source := "contract transfer(amount: Int)\n" +
		"  body:\n" +
		"    return true\n"
	parseSourceExpectError(t, source)
}

func TestParser_ContractSectionsAnyOrderButAtMostOne(t *testing.T) {
	source := "contract withdraw(amount: Int) -> Bool\n" +
		"  effects:\n" +
		"    modifies [account.balance]\n" +
		"  precondition:\n" +
		"    amount > 0\n" +
		"  body:\n" +
		"    account.balance = account.balance - amount\n" +
		"  postcondition:\n" +
		"    account.balance >= 0\n"

	program := parseSource(t, source)
	c := program.Contracts[0]

	if c.Precondition == nil || len(c.Precondition.Conditions) != 1 {
		t.Fatalf("expected 1 precondition, got %+v", c.Precondition)
	}
	if c.Postcondition == nil || len(c.Postcondition.Conditions) != 1 {
		t.Fatalf("expected 1 postcondition, got %+v", c.Postcondition)
	}
	if c.Effects == nil || len(c.Effects.Declarations) != 1 {
		t.Fatalf("expected 1 effect declaration, got %+v", c.Effects)
	}
	if c.Body == nil || len(c.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %+v", c.Body)
	}
}

func TestParser_DuplicateSectionRejected(t *testing.T) {
	source := "contract bad() -> Bool\n" +
		"  precondition:\n" +
		"    true\n" +
		"  precondition:\n" +
		"    false\n" +
		"  body:\n" +
		"    return true\n"

	err := parseSourceExpectError(t, source)
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("expected a *ParseError, got %T: %v", err, err)
	}
}

func TestParser_Effects(t *testing.T) {
	source := "contract transfer() -> Bool\n" +
		"  effects:\n" +
		"    modifies [source.balance, destination.balance]\n" +
		"    reads [source.owner]\n" +
		"    emits TransferCompleted\n" +
		"    touches_nothing_else\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	effects := program.Contracts[0].Effects
	if len(effects.Declarations) != 4 {
		t.Fatalf("expected 4 effect declarations, got %d", len(effects.Declarations))
	}

	modifies, ok := effects.Declarations[0].(*ast.ModifiesEffect)
	if !ok || len(modifies.Targets) != 2 || modifies.Targets[1] != "destination.balance" {
		t.Errorf("expected ModifiesEffect with 2 targets, got %+v", effects.Declarations[0])
	}
	reads, ok := effects.Declarations[1].(*ast.ReadsEffect)
	if !ok || reads.Targets[0] != "source.owner" {
		t.Errorf("expected ReadsEffect, got %+v", effects.Declarations[1])
	}
	emits, ok := effects.Declarations[2].(*ast.EmitsEffect)
	if !ok || emits.EventType != "TransferCompleted" {
		t.Errorf("expected EmitsEffect, got %+v", effects.Declarations[2])
	}
	if _, ok := effects.Declarations[3].(*ast.TouchesNothingElse); !ok {
		t.Errorf("expected TouchesNothingElse, got %+v", effects.Declarations[3])
	}
}

func TestParser_PermissionsGrantsAndDenies(t *testing.T) {
	source := "contract view_record() -> Bool\n" +
		"  permissions:\n" +
		"    grants: [read(record.name), read(record.balance)]\n" +
		"    denies: [write(record.name)]\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	perms := program.Contracts[0].Permissions
	if perms.Grants == nil || len(perms.Grants.Permissions) != 2 {
		t.Fatalf("expected 2 granted permissions, got %+v", perms.Grants)
	}
	if perms.Grants.Permissions[0] != "read(record.name)" {
		t.Errorf("expected exact permission expression %q, got %q", "read(record.name)", perms.Grants.Permissions[0])
	}
	if perms.Denies == nil || len(perms.Denies.Permissions) != 1 {
		t.Fatalf("expected 1 denied permission, got %+v", perms.Denies)
	}
}

func TestParser_PermissionsEscalation(t *testing.T) {
	source := "contract risky() -> Bool\n" +
		"  permissions:\n" +
		"    escalation: require dual approval from finance and security\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	esc := program.Contracts[0].Permissions.Escalation
	if esc == nil {
		t.Fatal("expected an escalation policy")
	}
	expected := "require dual approval from finance and security"
	if esc.Policy != expected {
		t.Errorf("expected escalation policy %q, got %q", expected, esc.Policy)
	}
}

func TestParser_OnFailure(t *testing.T) {
	source := "contract withdraw() -> Bool\n" +
		"  body:\n" +
		"    return true\n" +
		"  on_failure:\n" +
		"    emit WithdrawFailed\n"

	program := parseSource(t, source)
	c := program.Contracts[0]
	if c.OnFailure == nil || len(c.OnFailure.Statements) != 1 {
		t.Fatalf("expected 1 on_failure statement, got %+v", c.OnFailure)
	}
	if _, ok := c.OnFailure.Statements[0].(*ast.EmitStmt); !ok {
		t.Errorf("expected EmitStmt, got %T", c.OnFailure.Statements[0])
	}
}

func TestParser_IfElseIfElse(t *testing.T) {
	source := "contract classify(amount: Int) -> Bool\n" +
		"  body:\n" +
		"    if amount > 100:\n" +
		"      return true\n" +
		"    else:\n" +
		"      if amount > 10:\n" +
		"        return false\n" +
		"      else:\n" +
		"        return false\n"

	program := parseSource(t, source)
	body := program.Contracts[0].Body.Statements
	ifStmt, ok := body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", body[0])
	}
	if len(ifStmt.ElseBody) != 1 {
		t.Fatalf("expected else-if folded into single-statement else body, got %d", len(ifStmt.ElseBody))
	}
	elseIf, ok := ifStmt.ElseBody[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected nested IfStmt in else body, got %T", ifStmt.ElseBody[0])
	}
	if len(elseIf.ElseBody) != 1 {
		t.Fatalf("expected final else body, got %d", len(elseIf.ElseBody))
	}
}

func TestParser_ForAndWhile(t *testing.T) {
	source := "contract sumAll(items: List<Int>) -> Int\n" +
		"  body:\n" +
		"    for item in items:\n" +
		"      total = total + item\n" +
		"    while total > 0:\n" +
		"      total = total - 1\n" +
		"    return total\n"

	program := parseSource(t, source)
	body := program.Contracts[0].Body.Statements
	if len(body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(body))
	}
	forStmt, ok := body[0].(*ast.ForStmt)
	if !ok || forStmt.Var != "item" {
		t.Errorf("expected ForStmt over 'item', got %+v", body[0])
	}
	if _, ok := body[1].(*ast.WhileStmt); !ok {
		t.Errorf("expected WhileStmt, got %T", body[1])
	}
}

func TestParser_AssignmentTargets(t *testing.T) {
	source := "contract update() -> Bool\n" +
		"  body:\n" +
		"    account.balance = account.balance + 1\n" +
		"    return true\n"

	program := parseSource(t, source)
	assign, ok := program.Contracts[0].Body.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %T", program.Contracts[0].Body.Statements[0])
	}
	fa, ok := assign.Target.(*ast.FieldAccess)
	if !ok || fa.FieldName != "balance" {
		t.Errorf("expected FieldAccess target ending in 'balance', got %+v", assign.Target)
	}
}

func TestParser_InvalidAssignmentTargetRejected(t *testing.T) {
	source := "contract update() -> Bool\n" +
		"  body:\n" +
		"    account.balance() = 1\n"
	parseSourceExpectError(t, source)
}

func TestParser_ExpressionPrecedence(t *testing.T) {
	source := "contract check() -> Bool\n" +
		"  precondition:\n" +
		"    not a and b or c == d + e * f\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	cond := program.Contracts[0].Precondition.Conditions[0]

	// Top-level node must be "or", since or binds loosest.
	or, ok := cond.(*ast.BinaryOp)
	if !ok || or.Operator != "or" {
		t.Fatalf("expected top-level 'or', got %+v", cond)
	}
	and, ok := or.Left.(*ast.BinaryOp)
	if !ok || and.Operator != "and" {
		t.Fatalf("expected left side 'and', got %+v", or.Left)
	}
	if _, ok := and.Left.(*ast.UnaryOp); !ok {
		t.Errorf("expected 'not a' as left operand of and, got %+v", and.Left)
	}
	eq, ok := or.Right.(*ast.BinaryOp)
	if !ok || eq.Operator != "==" {
		t.Fatalf("expected right side '==', got %+v", or.Right)
	}
	plus, ok := eq.Right.(*ast.BinaryOp)
	if !ok || plus.Operator != "+" {
		t.Fatalf("expected 'd + e * f' rooted at '+', got %+v", eq.Right)
	}
	if _, ok := plus.Right.(*ast.BinaryOp); !ok {
		t.Errorf("expected '*' nested under '+' (tighter binding), got %+v", plus.Right)
	}
}

func TestParser_HasExpression(t *testing.T) {
	source := "contract check(actor: Actor) -> Bool\n" +
		"  precondition:\n" +
		"    actor has finance.approve\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	has, ok := program.Contracts[0].Precondition.Conditions[0].(*ast.HasExpr)
	if !ok {
		t.Fatalf("expected HasExpr, got %+v", program.Contracts[0].Precondition.Conditions[0])
	}
	if _, ok := has.Subject.(*ast.Identifier); !ok {
		t.Errorf("expected identifier subject, got %+v", has.Subject)
	}
}

func TestParser_OldExpressionInPostcondition(t *testing.T) {
	source := "contract withdraw(amount: Int) -> Bool\n" +
		"  postcondition:\n" +
		"    account.balance == old(account.balance) - amount\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	eq := program.Contracts[0].Postcondition.Conditions[0].(*ast.BinaryOp)
	minus := eq.Right.(*ast.BinaryOp)
	old, ok := minus.Left.(*ast.OldExpr)
	if !ok {
		t.Fatalf("expected OldExpr, got %+v", minus.Left)
	}
	if _, ok := old.Inner.(*ast.FieldAccess); !ok {
		t.Errorf("expected field access inside old(), got %+v", old.Inner)
	}
}

func TestParser_FunctionAndMethodCallsWithKeywordArgs(t *testing.T) {
	source := "contract check() -> Bool\n" +
		"  body:\n" +
		"    record.notify(channel: \"audit\", urgent: true)\n" +
		"    lookup(id)\n" +
		"    return true\n"

	program := parseSource(t, source)
	body := program.Contracts[0].Body.Statements

	exprStmt := body[0].(*ast.ExprStmt)
	call, ok := exprStmt.Expr.(*ast.MethodCall)
	if !ok {
		t.Fatalf("expected MethodCall, got %T", exprStmt.Expr)
	}
	if len(call.Arguments) != 2 || call.Arguments[0].Name != "channel" {
		t.Fatalf("expected 2 keyword arguments starting with 'channel', got %+v", call.Arguments)
	}

	callStmt := body[1].(*ast.ExprStmt)
	fnCall, ok := callStmt.Expr.(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expected FunctionCall, got %T", callStmt.Expr)
	}
	if len(fnCall.Arguments) != 1 || fnCall.Arguments[0].Name != "" {
		t.Errorf("expected 1 positional argument, got %+v", fnCall.Arguments)
	}
}

func TestParser_ListLiteralAndListType(t *testing.T) {
	source := "contract sumAll(items: List<Int>) -> List<Int>\n" +
		"  body:\n" +
		"    values = [1, 2, 3]\n" +
		"    return values\n"

	program := parseSource(t, source)
	param := program.Contracts[0].Params[0]
	listType, ok := param.Type.(*ast.ListType)
	if !ok {
		t.Fatalf("expected ListType, got %+v", param.Type)
	}
	elem, ok := listType.ElementType.(*ast.SimpleType)
	if !ok || elem.Name != "Int" {
		t.Errorf("expected list element type Int, got %+v", listType.ElementType)
	}

	assign := program.Contracts[0].Body.Statements[0].(*ast.Assignment)
	list, ok := assign.Value.(*ast.ListLiteral)
	if !ok || len(list.Elements) != 3 {
		t.Fatalf("expected 3-element list literal, got %+v", assign.Value)
	}
}

func TestParser_GenericType(t *testing.T) {
	source := "contract lookup(index: Map<String, Account>) -> Bool\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	generic, ok := program.Contracts[0].Params[0].Type.(*ast.GenericType)
	if !ok || generic.Name != "Map" || len(generic.Params) != 2 {
		t.Fatalf("expected GenericType(Map, 2 params), got %+v", program.Contracts[0].Params[0].Type)
	}
}

func TestParser_AnnotatedType(t *testing.T) {
	source := "contract deposit(amount: Int[positive, nonzero]) -> Bool\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	annotated, ok := program.Contracts[0].Params[0].Type.(*ast.AnnotatedType)
	if !ok {
		t.Fatalf("expected AnnotatedType, got %+v", program.Contracts[0].Params[0].Type)
	}
	if len(annotated.Annotations) != 2 || annotated.Annotations[0] != "positive" {
		t.Errorf("expected annotations [positive, nonzero], got %+v", annotated.Annotations)
	}
	base, ok := annotated.Base.(*ast.SimpleType)
	if !ok || base.Name != "Int" {
		t.Errorf("expected base type Int, got %+v", annotated.Base)
	}
}

func TestParser_TypeDef(t *testing.T) {
	source := "type Account\n" +
		"  fields:\n" +
		"    balance: Int\n" +
		"    owner: String\n" +
		"  flow_constraints:\n" +
		"    never_flows_to: [logs, external_api]\n" +
		"    requires_context: finance\n"

	program := parseSource(t, source)
	if len(program.TypeDefs) != 1 {
		t.Fatalf("expected 1 type def, got %d", len(program.TypeDefs))
	}
	td := program.TypeDefs[0]
	if td.Name != "Account" {
		t.Errorf("expected type name 'Account', got %q", td.Name)
	}
	if len(td.Fields) != 2 || td.Fields[1].Name != "owner" {
		t.Fatalf("expected 2 fields, second named 'owner', got %+v", td.Fields)
	}
	if len(td.FlowConstraints) != 2 {
		t.Fatalf("expected 2 flow constraints, got %d", len(td.FlowConstraints))
	}
	nft, ok := td.FlowConstraints[0].(*ast.NeverFlowsTo)
	if !ok || len(nft.Destinations) != 2 {
		t.Errorf("expected NeverFlowsTo with 2 destinations, got %+v", td.FlowConstraints[0])
	}
	rc, ok := td.FlowConstraints[1].(*ast.RequiresContext)
	if !ok || rc.Context != "finance" {
		t.Errorf("expected RequiresContext(finance), got %+v", td.FlowConstraints[1])
	}
}

func TestParser_TypeDefWithBaseType(t *testing.T) {
	source := "type PositiveInt: Int\n" +
		"  fields:\n" +
		"    value: Int\n"

	program := parseSource(t, source)
	td := program.TypeDefs[0]
	base, ok := td.BaseType.(*ast.SimpleType)
	if !ok || base.Name != "Int" {
		t.Errorf("expected base type Int, got %+v", td.BaseType)
	}
}

func TestParser_SharedDecl(t *testing.T) {
	source := "shared ledger: Ledger\n" +
		"  access: read_write\n" +
		"  isolation: serializable\n" +
		"  audit: full\n"

	program := parseSource(t, source)
	if len(program.Shared) != 1 {
		t.Fatalf("expected 1 shared declaration, got %d", len(program.Shared))
	}
	s := program.Shared[0]
	if s.Name != "ledger" || s.TypeName != "Ledger" {
		t.Errorf("expected shared ledger: Ledger, got %+v", s)
	}
	if s.Access != "read_write" || s.Isolation != "serializable" || s.Audit != "full" {
		t.Errorf("expected access/isolation/audit parsed, got %+v", s)
	}
}

func TestParser_NoErrorRecovery(t *testing.T) {
	source := "contract broken(\n" +
		"  body:\n" +
		"    return true\n"
	parseSourceExpectError(t, source)
}

func TestParser_MultipleContractsTypesAndShared(t *testing.T) {
	source := "type Account\n" +
		"  fields:\n" +
		"    balance: Int\n" +
		"\n" +
		"shared ledger: Ledger\n" +
		"  access: read_only\n" +
		"\n" +
		"contract noop() -> Bool\n" +
		"  body:\n" +
		"    return true\n" +
		"\n" +
		"contract noop2() -> Bool\n" +
		"  body:\n" +
		"    return true\n"

	program := parseSource(t, source)
	if len(program.TypeDefs) != 1 || len(program.Shared) != 1 || len(program.Contracts) != 2 {
		t.Fatalf("expected 1 type, 1 shared, 2 contracts, got %d/%d/%d",
			len(program.TypeDefs), len(program.Shared), len(program.Contracts))
	}
}

func TestParser_Determinism(t *testing.T) {
	source := "contract transfer(amount: Int) -> Bool\n" +
		"  precondition:\n" +
		"    amount > 0\n" +
		"  body:\n" +
		"    return true\n"

	first := parseSource(t, source)
	second := parseSource(t, source)

	if len(first.Contracts) != len(second.Contracts) {
		t.Fatalf("expected two parses of identical source to agree on contract count")
	}
	if first.Contracts[0].Name != second.Contracts[0].Name {
		t.Errorf("expected two parses of identical source to agree on contract name")
	}
}
