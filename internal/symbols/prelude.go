package symbols

// preludeEntry seeds the universe scope. Analysis runs without macro
// expansion or header resolution, so the common libc surface is
// declared up front to keep unresolved-name reporting quiet.
type preludeEntry struct {
	Name  string
	Kind  SymbolKind
	Flags SymbolFlags
}

func preludeEntries() []preludeEntry {
	fn := func(name string) preludeEntry {
		return preludeEntry{Name: name, Kind: SymbolFunction, Flags: SymbolFlagBuiltin}
	}
	ty := func(name string) preludeEntry {
		return preludeEntry{Name: name, Kind: SymbolTypedef, Flags: SymbolFlagBuiltin}
	}
	mac := func(name string) preludeEntry {
		return preludeEntry{Name: name, Kind: SymbolMacro, Flags: SymbolFlagBuiltin}
	}
	return []preludeEntry{
		// allocation and resource management
		fn("malloc"), fn("calloc"), fn("realloc"), fn("free"), fn("strdup"),
		fn("fopen"), fn("fdopen"), fn("freopen"), fn("fclose"),
		fn("open"), fn("creat"), fn("close"), fn("dup"), fn("dup2"),
		fn("socket"), fn("accept"), fn("shutdown"),
		fn("mmap"), fn("munmap"),
		// stdio
		fn("printf"), fn("fprintf"), fn("sprintf"), fn("snprintf"),
		fn("vprintf"), fn("vfprintf"), fn("vsprintf"), fn("vsnprintf"),
		fn("scanf"), fn("fscanf"), fn("sscanf"),
		fn("puts"), fn("fputs"), fn("gets"), fn("fgets"),
		fn("getc"), fn("fgetc"), fn("putc"), fn("fputc"), fn("getchar"), fn("putchar"),
		fn("fread"), fn("fwrite"), fn("fseek"), fn("ftell"), fn("rewind"),
		fn("fflush"), fn("feof"), fn("ferror"), fn("perror"),
		fn("read"), fn("write"), fn("lseek"),
		// strings and memory
		fn("strcpy"), fn("strncpy"), fn("strcat"), fn("strncat"),
		fn("strcmp"), fn("strncmp"), fn("strlen"), fn("strnlen"),
		fn("strchr"), fn("strrchr"), fn("strstr"), fn("strtok"), fn("strtok_r"),
		fn("strerror"), fn("strerror_r"),
		fn("memcpy"), fn("memmove"), fn("memset"), fn("memcmp"), fn("memchr"),
		// conversion
		fn("atoi"), fn("atol"), fn("atof"),
		fn("strtol"), fn("strtoul"), fn("strtoll"), fn("strtoull"), fn("strtod"),
		// process and environment
		fn("system"), fn("exit"), fn("_exit"), fn("abort"), fn("atexit"),
		fn("getenv"), fn("setenv"), fn("unsetenv"),
		fn("fork"), fn("execve"), fn("execvp"), fn("waitpid"), fn("wait"),
		fn("signal"), fn("raise"), fn("kill"),
		// misc
		fn("qsort"), fn("bsearch"), fn("rand"), fn("srand"),
		fn("time"), fn("clock"), fn("gettimeofday"),
		fn("assert"), fn("setjmp"), fn("longjmp"),
		fn("isalpha"), fn("isdigit"), fn("isalnum"), fn("isspace"),
		fn("isupper"), fn("islower"), fn("toupper"), fn("tolower"),
		fn("va_start"), fn("va_end"), fn("va_arg"), fn("va_copy"),

		// common typedef-style names
		ty("size_t"), ty("ssize_t"), ty("ptrdiff_t"), ty("off_t"),
		ty("int8_t"), ty("int16_t"), ty("int32_t"), ty("int64_t"),
		ty("uint8_t"), ty("uint16_t"), ty("uint32_t"), ty("uint64_t"),
		ty("intptr_t"), ty("uintptr_t"), ty("wchar_t"),
		ty("FILE"), ty("DIR"), ty("pid_t"), ty("uid_t"), ty("gid_t"),
		ty("time_t"), ty("clock_t"), ty("va_list"), ty("jmp_buf"),
		ty("bool"), ty("_Bool"),

		// common macro names
		mac("NULL"), mac("EOF"), mac("BUFSIZ"),
		mac("EXIT_SUCCESS"), mac("EXIT_FAILURE"),
		mac("true"), mac("false"), mac("TRUE"), mac("FALSE"),
		mac("INT_MAX"), mac("INT_MIN"), mac("UINT_MAX"),
		mac("SIZE_MAX"), mac("CHAR_BIT"),
		mac("errno"), mac("stdin"), mac("stdout"), mac("stderr"),
		mac("WIFEXITED"), mac("WEXITSTATUS"), mac("WIFSIGNALED"), mac("WTERMSIG"),
		mac("O_RDONLY"), mac("O_WRONLY"), mac("O_RDWR"), mac("O_CREAT"),
		mac("SEEK_SET"), mac("SEEK_CUR"), mac("SEEK_END"),
		mac("__FILE__"), mac("__LINE__"), mac("__func__"), mac("__DATE__"), mac("__TIME__"),
	}
}
