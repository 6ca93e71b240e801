/*
Package pattern compiles tree patterns and matches them against pytree
nodes.

# Overview

A pattern describes the shape of a subtree in terms of node type tags. It is
compiled once into a *Pattern and then matched against many nodes. A
successful match fills a Results map with the nodes bound to the pattern's
named captures.

# Syntax

	Matcher      := Alternatives EOF
	Alternatives := Alternative ('|' Alternative)*
	Alternative  := (Unit | NegatedUnit)+
	Unit         := [NAME '='] ( STRING [Repeater]
	                           | NAME [Details] [Repeater]
	                           | '(' Alternatives ')' [Repeater]
	                           | '[' Alternatives ']' )
	NegatedUnit  := 'not' ( STRING | NAME [Details] | '(' Alternatives ')' )
	Repeater     := '*' | '+' | '{' NUMBER [',' NUMBER] '}'
	Details      := '<' Alternatives '>'

The building blocks are:

  - symbol< ... >: a branch of that symbol whose children match the
    sequence inside the angle brackets, e.g. "power< 'print' trailer >"

  - symbol: any node of that type, children unconstrained

  - TOKEN: a leaf of that token type, e.g. NAME or STRING

  - 'text': a leaf with exactly that value. Its type is inferred from the
    text: identifiers and keywords are NAME leaves, operators their
    operator token

  - any: exactly one node of any type. "any*" is zero or more nodes,
    "any+" one or more

  - name=unit: capture. Single node units bind the matched node, repeated
    units and groups bind the matched slice of nodes

  - [ ... ]: an optional group, zero or one occurrence

  - ( a | b ): alternation. "|" also works at the top level and inside
    angle brackets

  - not unit: succeeds, consuming nothing, when unit does not match at the
    current position

# Matching

Type tags are compared at every level. A branch's child list is matched as
a sequence and must be consumed entirely. Repeated units are tried shortest
first and the matcher backtracks when the rest of the sequence fails to
align, so in

	expr_stmt< head=any* '=' tail=any* >

head binds everything before the first '=' and tail everything after it.

# Usage

	p, err := pattern.Compile("funcdef< 'def' name=NAME any* >")
	if err != nil {
		return err
	}
	results := pattern.Results{}
	if p.Match(node, results) {
		fmt.Println(results.Node("name"))
	}

Compile is a pure function of its input and may be called at any time,
including from inside a rewrite pass. Names are resolved against a Grammar;
Compile uses the Python grammar and CompileWith accepts any other.
*/
package pattern
