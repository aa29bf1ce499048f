package il

import (
	"fmt"

	"github.com/slowlang/mini/compiler/config"
)

const epilogStart = "}\ncatch [mscorlib]System.Exception\n"

// Prolog opens the entry method and its try block.
func Prolog(b []byte, c config.Config) []byte {
	return fmt.Appendf(b, `.assembly extern mscorlib { }
.assembly %s { }
.method static void main()
{
.entrypoint
.try
{
// prolog
.maxstack %d
`, c.Assembly, c.MaxStack)
}

// Epilog closes the try block with a handler printing the exception message.
func Epilog(b []byte) []byte {
	return fmt.Appendf(b, epilogStart+`{
callvirt instance string [mscorlib]System.Exception::get_Message()
call void [mscorlib]System.Console::WriteLine(string)
leave %[1]s
}
%[1]s: ret
}
`, End)
}
