/*

Process of compilation

Program Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	front (check) ->
Typed Tree, Symbol Table (sym), Diagnostics (diag) ->
	back (emit) ->
Assembly Listing (il) ->
	vm ->
Program Output

Diagnostics stop the pipeline after front: nothing is emitted
unless the whole program is correct.

*/
package compiler
