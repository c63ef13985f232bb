/*

Process of compilation

Expression Text ->
	tokenize (front) ->
Token Sequence ->
	parse (front) ->
Abstract Syntax Tree (ast) ->
	generate (back) ->
Stack Machine Code (asm) ->
	render ->
Assembly Text

Assembly Text ->
	parse (asm) ->
Stack Machine Code (asm) ->
	run (vm) ->
Value

Abstract Syntax Tree (ast) ->
	eval (analyze) ->
Value

*/
package compiler
